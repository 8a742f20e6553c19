package dfu

// Download writes a firmware image to the device in chunks of at most the
// negotiated transfer size, one DFU_DNLOAD per transaction number, polling
// the device to idle after every chunk. After the last data chunk a
// zero-length DFU_DNLOAD triggers manifestation, polled the same way.
//
// A transport error anywhere in the loop terminates the whole operation;
// resuming a partially flashed image without re-establishing offset state
// is unsafe, so nothing is retried.
func (s *Session) Download(image []byte, progress Progress) (err error) {
	defer wrapOp("download", &err)

	if err = s.preflight(); err != nil {
		return err
	}

	total := int64(len(image))
	s.log.WithField("bytes", total).Info("starting download")

	var done int64
	for done < total {
		n := int64(s.chunk)
		if rem := total - done; rem < n {
			n = rem
		}
		transaction := s.nextTransaction()
		s.log.Debugf("transaction %d: downloading %d bytes (%d/%d)", transaction, n, done, total)
		if err = s.download(transaction, image[done:done+n]); err != nil {
			return err
		}
		if err = s.waitSettled(StateDownloadIdle, StateDfuIdle); err != nil {
			return err
		}
		done += n
		if progress != nil {
			progress(done, total)
		}
	}

	// Zero-length download request signals the end of the image and starts
	// manifestation.
	transaction := s.nextTransaction()
	s.log.Debugf("transaction %d: downloading final zero-length request", transaction)
	if err = s.download(transaction, nil); err != nil {
		return err
	}
	if err = s.waitSettled(StateDownloadIdle, StateDfuIdle); err != nil {
		return err
	}

	s.log.Info("download complete")
	return nil
}
