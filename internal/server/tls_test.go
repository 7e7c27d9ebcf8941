package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cruciblehq/bentostart/internal/launch"
)

// Key material written to a temp dir.
type testCert struct {
	certFile string
	keyFile  string
	certPEM  []byte
	keyDER   []byte
}

func newTestCert(t *testing.T) testCert {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	c := testCert{
		certFile: filepath.Join(dir, "cert.pem"),
		keyFile:  filepath.Join(dir, "key.pem"),
		certPEM:  pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		keyDER:   keyDER,
	}
	writeFile(t, c.certFile, c.certPEM)
	writeFile(t, c.keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}))
	return c
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestBuildTLSWithoutCertificate(t *testing.T) {
	cfg, err := buildTLS(launch.SSL{KeyFile: "key.pem", Version: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Fatal("expected no TLS config without a certificate")
	}
}

func TestBuildTLS(t *testing.T) {
	c := newTestCert(t)

	cfg, err := buildTLS(launch.SSL{
		CertFile: c.certFile,
		KeyFile:  c.keyFile,
		Version:  17,
		CACerts:  c.certFile,
		Ciphers:  "ECDHE-ECDSA-AES128-GCM-SHA256:!aNULL",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Certificates) != 1 {
		t.Fatalf("len(Certificates) = %d, want 1", len(cfg.Certificates))
	}
	if cfg.ClientAuth != tls.NoClientCert {
		t.Fatalf("ClientAuth = %v, want NoClientCert", cfg.ClientAuth)
	}
	if cfg.ClientCAs == nil {
		t.Fatal("expected client CAs to be loaded")
	}
	if cfg.MinVersion != 0 || cfg.MaxVersion != 0 {
		t.Fatalf("versions = %x-%x, want Go defaults", cfg.MinVersion, cfg.MaxVersion)
	}
	if len(cfg.CipherSuites) != 1 || cfg.CipherSuites[0] != tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256 {
		t.Fatalf("CipherSuites = %v, want [ECDHE-ECDSA-AES128-GCM-SHA256]", cfg.CipherSuites)
	}
}

func TestBuildTLSCombinedFile(t *testing.T) {
	c := newTestCert(t)

	combined := filepath.Join(t.TempDir(), "combined.pem")
	data := append(append([]byte{}, c.certPEM...), pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: c.keyDER})...)
	writeFile(t, combined, data)

	if _, err := buildTLS(launch.SSL{CertFile: combined}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildTLSMissingFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := buildTLS(launch.SSL{CertFile: filepath.Join(dir, "missing.pem")})
	if !errors.Is(err, ErrTLS) {
		t.Fatalf("expected ErrTLS, got %v", err)
	}

	c := newTestCert(t)
	_, err = buildTLS(launch.SSL{CertFile: c.certFile, KeyFile: c.keyFile, CACerts: filepath.Join(dir, "ca.pem")})
	if !errors.Is(err, ErrTLS) {
		t.Fatalf("expected ErrTLS for missing CA file, got %v", err)
	}
}

func TestBuildTLSEncryptedKey(t *testing.T) {
	c := newTestCert(t)

	//lint:ignore SA1019 legacy encrypted PEM keys are what the option accepts.
	block, err := x509.EncryptPEMBlock(rand.Reader, "EC PRIVATE KEY", c.keyDER, []byte("secret"), x509.PEMCipherAES256)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, c.keyFile, pem.EncodeToMemory(block))

	if _, err := buildTLS(launch.SSL{CertFile: c.certFile, KeyFile: c.keyFile, KeyPassword: "secret"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = buildTLS(launch.SSL{CertFile: c.certFile, KeyFile: c.keyFile, KeyPassword: "wrong"})
	if !errors.Is(err, ErrTLS) {
		t.Fatalf("expected ErrTLS for a wrong password, got %v", err)
	}
}

func TestDecryptKeyRejectsPKCS8Encryption(t *testing.T) {
	data := pem.EncodeToMemory(&pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: []byte{1, 2, 3}})

	if _, err := decryptKey(data, "secret"); !errors.Is(err, ErrTLS) {
		t.Fatalf("expected ErrTLS, got %v", err)
	}
}

func TestDecryptKeyPassesPlainKeys(t *testing.T) {
	c := newTestCert(t)
	plain := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: c.keyDER})
	data := append(append([]byte{}, c.certPEM...), plain...)

	got, err := decryptKey(data, "unused")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(plain) {
		t.Fatal("expected the plain key block to be returned unchanged")
	}
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		version  int
		min, max uint16
	}{
		{0, 0, 0},
		{2, 0, 0},
		{16, 0, 0},
		{17, 0, 0},
		{3, tls.VersionTLS10, tls.VersionTLS10},
		{4, tls.VersionTLS11, tls.VersionTLS11},
		{5, tls.VersionTLS12, tls.VersionTLS12},
	}

	for _, tt := range tests {
		cfg := &tls.Config{}
		if err := setVersion(cfg, tt.version); err != nil {
			t.Fatalf("setVersion(%d) error: %v", tt.version, err)
		}
		if cfg.MinVersion != tt.min || cfg.MaxVersion != tt.max {
			t.Fatalf("setVersion(%d) = %x-%x, want %x-%x", tt.version, cfg.MinVersion, cfg.MaxVersion, tt.min, tt.max)
		}
	}

	if err := setVersion(&tls.Config{}, 1); !errors.Is(err, ErrTLS) {
		t.Fatalf("expected ErrTLS for SSLv3, got %v", err)
	}
}

func TestClientAuth(t *testing.T) {
	tests := map[int]tls.ClientAuthType{
		0: tls.NoClientCert,
		1: tls.VerifyClientCertIfGiven,
		2: tls.RequireAndVerifyClientCert,
	}

	for reqs, want := range tests {
		got, err := clientAuth(reqs)
		if err != nil {
			t.Fatalf("clientAuth(%d) error: %v", reqs, err)
		}
		if got != want {
			t.Fatalf("clientAuth(%d) = %v, want %v", reqs, got, want)
		}
	}

	if _, err := clientAuth(3); !errors.Is(err, ErrTLS) {
		t.Fatalf("expected ErrTLS, got %v", err)
	}
}

func TestCipherSuites(t *testing.T) {
	tests := []struct {
		list string
		want []uint16
	}{
		{"", nil},
		{"DEFAULT", nil},
		{"HIGH:!aNULL:!MD5", nil},
		{"ECDHE-RSA-AES256-GCM-SHA384", []uint16{tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384}},
		{
			"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256, ECDHE-ECDSA-CHACHA20-POLY1305",
			[]uint16{tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256, tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256},
		},
	}

	for _, tt := range tests {
		got, err := cipherSuites(tt.list)
		if err != nil {
			t.Fatalf("cipherSuites(%q) error: %v", tt.list, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("cipherSuites(%q) = %v, want %v", tt.list, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("cipherSuites(%q) = %v, want %v", tt.list, got, tt.want)
			}
		}
	}

	if _, err := cipherSuites("RC4-MD5"); !errors.Is(err, ErrTLS) {
		t.Fatalf("expected ErrTLS for an unsupported cipher, got %v", err)
	}
}
