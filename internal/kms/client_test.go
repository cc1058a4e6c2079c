package kms

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKMS struct {
	plaintext []byte
	err       error
	got       []byte
}

func (f *fakeKMS) Decrypt(_ context.Context, in *kms.DecryptInput, _ ...func(*kms.Options)) (*kms.DecryptOutput, error) {
	f.got = in.CiphertextBlob
	if f.err != nil {
		return nil, f.err
	}
	return &kms.DecryptOutput{Plaintext: append([]byte(nil), f.plaintext...)}, nil
}

func TestDecryptToken(t *testing.T) {
	fake := &fakeKMS{plaintext: []byte("xoxb-secret")}
	c := &Client{api: fake}

	tok, err := c.DecryptToken(context.Background(), base64.StdEncoding.EncodeToString([]byte("blob")))
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), fake.got)

	plain, err := tok.Reveal()
	require.NoError(t, err)
	assert.Equal(t, "xoxb-secret", plain)

	// Revealing twice works; the enclave is not consumed.
	plain, err = tok.Reveal()
	require.NoError(t, err)
	assert.Equal(t, "xoxb-secret", plain)
}

func TestDecryptToken_BadBase64(t *testing.T) {
	c := &Client{api: &fakeKMS{}}
	_, err := c.DecryptToken(context.Background(), "%%%")
	assert.Error(t, err)
}

func TestDecryptToken_KMSError(t *testing.T) {
	boom := errors.New("AccessDeniedException")
	c := &Client{api: &fakeKMS{err: boom}}
	_, err := c.DecryptToken(context.Background(), base64.StdEncoding.EncodeToString([]byte("blob")))
	assert.ErrorIs(t, err, boom)
}

func TestSealToken_WipesInput(t *testing.T) {
	plain := []byte("xoxb-plain")
	tok, err := SealToken(plain)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, len(plain)), plain)

	got, err := tok.Reveal()
	require.NoError(t, err)
	assert.Equal(t, "xoxb-plain", got)
}

func TestSealToken_Empty(t *testing.T) {
	_, err := SealToken(nil)
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestNew_CustomEndpoint(t *testing.T) {
	var target string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target = r.Header.Get("X-Amz-Target")
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		_, _ = w.Write([]byte(`{"KeyId":"alias/listwatch","Plaintext":"eG94Yi1zZWNyZXQ="}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), Options{Region: "us-east-1", Endpoint: srv.URL})
	require.NoError(t, err)

	tok, err := c.DecryptToken(context.Background(), base64.StdEncoding.EncodeToString([]byte("blob")))
	require.NoError(t, err)
	assert.Equal(t, "TrentService.Decrypt", target)
	assert.Contains(t, string(body), base64.StdEncoding.EncodeToString([]byte("blob")))

	plain, err := tok.Reveal()
	require.NoError(t, err)
	assert.Equal(t, "xoxb-secret", plain)
}
