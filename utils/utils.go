package utils

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
)

// DetectContentType detects the file type by reading MIME type information of the file content.
func DetectContentType(fname string) (string, error) {
	file, err := os.Open(fname)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("could not close the opened file: %v", err)
		}
	}()

	// Only the first 512 bytes are used to sniff the content type.
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	// Always returns a valid content-type and "application/octet-stream" if no others seemed to match.
	return http.DetectContentType(buffer[:n]), nil
}

// IsImage reports whether the file content looks like an image.
func IsImage(fname string) error {
	ctype, err := DetectContentType(fname)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(ctype, "image/") {
		return fmt.Errorf("%s is not an image file (%s)", fname, ctype)
	}
	return nil
}

// Contains reports whether the item is part of the collection.
func Contains[T comparable](collection []T, item T) bool {
	for _, v := range collection {
		if v == item {
			return true
		}
	}
	return false
}
