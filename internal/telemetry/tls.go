package telemetry

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"strings"

	"github.com/crmarques/snapdiff/faults"
)

// TLSOptions name the PEM files used to reach the OTLP collector.
type TLSOptions struct {
	CACertFile     string
	ClientCertFile string
	ClientKeyFile  string
}

func (o TLSOptions) IsZero() bool {
	return strings.TrimSpace(o.CACertFile) == "" &&
		strings.TrimSpace(o.ClientCertFile) == "" &&
		strings.TrimSpace(o.ClientKeyFile) == ""
}

func BuildTLSConfig(options TLSOptions) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if caFile := strings.TrimSpace(options.CACertFile); caFile != "" {
		caBytes, err := os.ReadFile(caFile)
		if err != nil {
			return nil, validationError("telemetry.otlp_ca_cert_file could not be read", err)
		}

		pool := x509.NewCertPool()
		if ok := pool.AppendCertsFromPEM(caBytes); !ok {
			return nil, validationError("telemetry.otlp_ca_cert_file is not valid PEM", nil)
		}
		tlsConfig.RootCAs = pool
	}

	clientCertFile := strings.TrimSpace(options.ClientCertFile)
	clientKeyFile := strings.TrimSpace(options.ClientKeyFile)
	if (clientCertFile == "") != (clientKeyFile == "") {
		return nil, validationError("telemetry requires both otlp_client_cert_file and otlp_client_key_file", nil)
	}

	if clientCertFile != "" {
		certificate, err := tls.LoadX509KeyPair(clientCertFile, clientKeyFile)
		if err != nil {
			return nil, validationError("telemetry client certificate pair is invalid", err)
		}
		tlsConfig.Certificates = []tls.Certificate{certificate}
	}

	return tlsConfig, nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}
