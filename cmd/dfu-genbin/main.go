// dfu-genbin generates a random binary file, handy as a throwaway firmware
// payload when exercising a DFU bootloader's download and upload paths.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	name := flag.String("file", "", "generated binary file name")
	size := flag.Int64("size", 4096, "file size in bytes")
	flag.Parse()

	if *name == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *size <= 0 {
		log.Fatalf("invalid file size %d", *size)
	}

	buf := make([]byte, *size)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("generating random data: %v", err)
	}
	if err := os.WriteFile(*name, buf, 0o644); err != nil {
		log.Fatalf("generate %q failed: %v", *name, err)
	}
	fmt.Printf("generated file %q size %d\n", *name, *size)
}
