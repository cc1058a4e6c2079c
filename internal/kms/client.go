// Package kms decrypts the Slack token and keeps the plaintext sealed in
// memory until it is needed.
package kms

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// decryptAPI is the subset of the KMS SDK used here.
type decryptAPI interface {
	Decrypt(ctx context.Context, in *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// Options selects the KMS endpoint. A non-empty Endpoint targets LocalStack
// (or any KMS-compatible server) with static dummy credentials; otherwise
// the default AWS credential chain is used.
type Options struct {
	Region   string
	Endpoint string
}

// Client turns KMS ciphertexts into sealed tokens.
type Client struct {
	api decryptAPI
}

func New(ctx context.Context, opts Options) (*Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	var svcOpts []func(*kms.Options)
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")))
		svcOpts = append(svcOpts, func(o *kms.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		})
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("kms: aws config for %s: %w", opts.Region, err)
	}
	return &Client{api: kms.NewFromConfig(awsCfg, svcOpts...)}, nil
}

// DecryptToken decodes a base64 ciphertext, decrypts it with KMS and seals
// the plaintext. The SDK's plaintext buffer is wiped by SealToken.
func (c *Client) DecryptToken(ctx context.Context, ciphertextB64 string) (*Token, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return nil, fmt.Errorf("kms: decode ciphertext: %w", err)
	}
	out, err := c.api.Decrypt(ctx, &kms.DecryptInput{CiphertextBlob: blob})
	if err != nil {
		return nil, fmt.Errorf("kms: decrypt token: %w", err)
	}
	return SealToken(out.Plaintext)
}
