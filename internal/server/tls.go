package server

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/cruciblehq/bentostart/internal/launch"
)

// Protocol constants of Python's ssl module.
const (
	sslProtocolTLS       = 2
	sslProtocolTLSv1     = 3
	sslProtocolTLSv1_1   = 4
	sslProtocolTLSv1_2   = 5
	sslProtocolTLSClient = 16
	sslProtocolTLSServer = 17
)

// Certificate requirement constants of Python's ssl module.
const (
	sslCertNone     = 0
	sslCertOptional = 1
	sslCertRequired = 2
)

// OpenSSL cipher names, mapped to the suites Go implements.
var opensslCiphers = map[string]uint16{
	"ECDHE-ECDSA-AES128-GCM-SHA256": tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	"ECDHE-ECDSA-AES256-GCM-SHA384": tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	"ECDHE-ECDSA-CHACHA20-POLY1305": tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
	"ECDHE-RSA-AES128-GCM-SHA256":   tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	"ECDHE-RSA-AES256-GCM-SHA384":   tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	"ECDHE-RSA-CHACHA20-POLY1305":   tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
	"ECDHE-ECDSA-AES128-SHA":        tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA,
	"ECDHE-ECDSA-AES256-SHA":        tls.TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA,
	"ECDHE-RSA-AES128-SHA":          tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
	"ECDHE-RSA-AES256-SHA":          tls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
	"AES128-GCM-SHA256":             tls.TLS_RSA_WITH_AES_128_GCM_SHA256,
	"AES256-GCM-SHA384":             tls.TLS_RSA_WITH_AES_256_GCM_SHA384,
	"AES128-SHA":                    tls.TLS_RSA_WITH_AES_128_CBC_SHA,
	"AES256-SHA":                    tls.TLS_RSA_WITH_AES_256_CBC_SHA,
}

// OpenSSL cipher-list keywords that select groups rather than suites. They
// leave Go's default suite selection in place.
var opensslKeywords = map[string]bool{
	"DEFAULT": true, "ALL": true, "HIGH": true, "MEDIUM": true, "COMPLEMENTOFDEFAULT": true,
	"TLSv1": true, "TLSv1.0": true, "TLSv1.2": true, "SSLv3": true, "@STRENGTH": true,
}

// Builds the server TLS config. Returns nil when no certificate is set.
func buildTLS(s launch.SSL) (*tls.Config, error) {
	if s.CertFile == "" {
		return nil, nil
	}

	cert, err := loadKeyPair(s.CertFile, s.KeyFile, s.KeyPassword)
	if err != nil {
		return nil, err
	}

	cfg := &tls.Config{Certificates: []tls.Certificate{cert}}

	if err := setVersion(cfg, s.Version); err != nil {
		return nil, err
	}

	if cfg.ClientAuth, err = clientAuth(s.CertReqs); err != nil {
		return nil, err
	}

	if s.CACerts != "" {
		caPEM, err := os.ReadFile(s.CACerts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTLS, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("%w: no certificates in %s", ErrTLS, s.CACerts)
		}
		cfg.ClientCAs = pool
	}

	if cfg.CipherSuites, err = cipherSuites(s.Ciphers); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Loads a certificate and key. The key file defaults to the certificate file,
// which then holds both. A password decrypts a legacy encrypted PEM key.
func loadKeyPair(certFile, keyFile, password string) (tls.Certificate, error) {
	if keyFile == "" {
		keyFile = certFile
	}

	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %w", ErrTLS, err)
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %w", ErrTLS, err)
	}

	if password != "" {
		if keyPEM, err = decryptKey(keyPEM, password); err != nil {
			return tls.Certificate{}, err
		}
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %w", ErrTLS, err)
	}
	return cert, nil
}

// Decrypts the first private key block in data. Unencrypted keys are
// returned unchanged.
func decryptKey(data []byte, password string) ([]byte, error) {
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, fmt.Errorf("%w: no private key found", ErrTLS)
		}
		if block.Type == "ENCRYPTED PRIVATE KEY" {
			return nil, fmt.Errorf("%w: encrypted PKCS#8 keys are not supported", ErrTLS)
		}
		if !strings.HasSuffix(block.Type, "PRIVATE KEY") {
			continue
		}

		// RFC 1423 encryption is what OpenSSL's traditional format uses; Go
		// keeps it only for compatibility.
		if !x509.IsEncryptedPEMBlock(block) {
			return pem.EncodeToMemory(block), nil
		}
		der, err := x509.DecryptPEMBlock(block, []byte(password))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTLS, err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der}), nil
	}
}

// Applies a Python ssl protocol constant. Version-specific protocols pin both
// bounds; the negotiating ones keep Go's defaults.
func setVersion(cfg *tls.Config, version int) error {
	switch version {
	case 0, sslProtocolTLS, sslProtocolTLSClient, sslProtocolTLSServer:
	case sslProtocolTLSv1:
		cfg.MinVersion, cfg.MaxVersion = tls.VersionTLS10, tls.VersionTLS10
	case sslProtocolTLSv1_1:
		cfg.MinVersion, cfg.MaxVersion = tls.VersionTLS11, tls.VersionTLS11
	case sslProtocolTLSv1_2:
		cfg.MinVersion, cfg.MaxVersion = tls.VersionTLS12, tls.VersionTLS12
	default:
		return fmt.Errorf("%w: unsupported ssl version %d", ErrTLS, version)
	}
	return nil
}

// Maps a Python ssl certificate requirement to a client auth policy.
func clientAuth(certReqs int) (tls.ClientAuthType, error) {
	switch certReqs {
	case sslCertNone:
		return tls.NoClientCert, nil
	case sslCertOptional:
		return tls.VerifyClientCertIfGiven, nil
	case sslCertRequired:
		return tls.RequireAndVerifyClientCert, nil
	default:
		return 0, fmt.Errorf("%w: unsupported ssl cert reqs %d", ErrTLS, certReqs)
	}
}

// Resolves an OpenSSL-style cipher list. Names may be OpenSSL or IANA names;
// keywords and exclusions ("!aNULL") are skipped. Returns nil, meaning Go's
// defaults, when nothing names a concrete suite.
func cipherSuites(list string) ([]uint16, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	iana := make(map[string]uint16)
	for _, cs := range tls.CipherSuites() {
		iana[cs.Name] = cs.ID
	}

	var ids []uint16
	for _, name := range strings.FieldsFunc(list, func(r rune) bool { return r == ':' || r == ',' || r == ' ' }) {
		if opensslKeywords[name] || strings.ContainsAny(name[:1], "!-+") {
			continue
		}
		if id, ok := opensslCiphers[name]; ok {
			ids = append(ids, id)
			continue
		}
		if id, ok := iana[name]; ok {
			ids = append(ids, id)
			continue
		}
		return nil, fmt.Errorf("%w: unknown cipher %q", ErrTLS, name)
	}
	return ids, nil
}
