package logging

import (
	"io"
	"log"
	"os"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup points the standard logger at stdout with no prefix, since every line
// the service emits is already a JSON object. When logstashAddr is set the
// output is mirrored there as well.
func Setup(logstashAddr string, opts ...Option) (io.Closer, error) {
	return setup(os.Stdout, logstashAddr, opts...)
}

func setup(out io.Writer, logstashAddr string, opts ...Option) (io.Closer, error) {
	log.SetFlags(0)
	if logstashAddr == "" {
		log.SetOutput(out)
		return nopCloser{}, nil
	}
	mirror, err := NewLogstashWriter(logstashAddr, opts...)
	if err != nil {
		log.SetOutput(out)
		return nopCloser{}, err
	}
	log.SetOutput(io.MultiWriter(out, mirror))
	return mirror, nil
}
