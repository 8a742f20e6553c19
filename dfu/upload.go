package dfu

// Upload reads the device's firmware: one DFU_UPLOAD of the negotiated
// chunk size per transaction number, polling the device to idle after
// every chunk, until the device answers with a response shorter than the
// requested size (the end-of-data sentinel). Chunks are concatenated in
// transaction order.
//
// expected is an advisory size hint bounding progress reporting only; it
// never terminates the loop. The session's upload limit is the hard cap
// that protects against a device that never sends a short packet.
func (s *Session) Upload(expected int64, progress Progress) (data []byte, err error) {
	defer wrapOp("upload", &err)

	if err = s.preflight(); err != nil {
		return nil, err
	}

	s.log.WithField("expected", expected).Info("starting upload")

	for {
		transaction := s.nextTransaction()
		chunk, uerr := s.upload(transaction, s.chunk)
		if uerr != nil {
			return nil, uerr
		}
		if err = s.waitSettled(StateUploadIdle, StateDfuIdle); err != nil {
			return nil, err
		}
		data = append(data, chunk...)
		s.log.Debugf("transaction %d: uploaded %d bytes (%d total)", transaction, len(chunk), len(data))

		if progress != nil {
			shown := int64(len(data))
			if expected > 0 && shown > expected {
				shown = expected
			}
			progress(shown, expected)
		}

		if len(chunk) < s.chunk {
			break
		}
		if s.limit > 0 && int64(len(data)) >= s.limit {
			return nil, ErrUploadOverrun
		}
	}

	s.log.WithField("bytes", len(data)).Info("upload complete")
	return data, nil
}
