// Package secretsource resolves command-line values that refer to secrets
// stored elsewhere. A value is one of:
//
//	env:NAME                 environment variable
//	file:PATH                file contents
//	ssm:/param/name          AWS SSM parameter (decrypted)
//	secretsmanager:ID        AWS Secrets Manager secret string
//	s3://bucket/key          AWS S3 object
//
// Anything else is returned unchanged. Trailing newlines are removed from
// resolved values.
package secretsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ErrNotFound indicates the referenced secret does not exist or is empty.
var ErrNotFound = errors.New("secretsource: not found")

// SSMAPI is the subset of the SSM client used here.
type SSMAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// S3API is the subset of the S3 client used here.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Resolver turns references into values. AWS clients are created on first
// use from the default credential chain unless set with options.
type Resolver struct {
	ssm            SSMAPI
	secretsManager SecretsManagerAPI
	s3             S3API
	lookupEnv      func(string) (string, bool)
	readFile       func(string) ([]byte, error)

	once   sync.Once
	awsCfg aws.Config
	awsErr error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSSM sets the SSM client.
func WithSSM(c SSMAPI) Option {
	return func(r *Resolver) { r.ssm = c }
}

// WithSecretsManager sets the Secrets Manager client.
func WithSecretsManager(c SecretsManagerAPI) Option {
	return func(r *Resolver) { r.secretsManager = c }
}

// WithS3 sets the S3 client.
func WithS3(c S3API) Option {
	return func(r *Resolver) { r.s3 = c }
}

// WithEnv replaces the environment lookup.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(r *Resolver) { r.lookupEnv = lookup }
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		lookupEnv: os.LookupEnv,
		readFile:  os.ReadFile,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// IsReference reports whether value names an external source.
func IsReference(value string) bool {
	for _, prefix := range []string{"env:", "file:", "ssm:", "secretsmanager:", "s3://"} {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// Resolve returns the value value refers to, or value itself when it is
// not a reference.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	var (
		out string
		err error
	)
	switch {
	case strings.HasPrefix(value, "env:"):
		name := strings.TrimPrefix(value, "env:")
		v, ok := r.lookupEnv(name)
		if !ok {
			return "", fmt.Errorf("%w: environment variable %s", ErrNotFound, name)
		}
		out = v
	case strings.HasPrefix(value, "file:"):
		var data []byte
		data, err = r.readFile(strings.TrimPrefix(value, "file:"))
		out = string(data)
	case strings.HasPrefix(value, "ssm:"):
		out, err = r.fromSSM(ctx, strings.TrimPrefix(value, "ssm:"))
	case strings.HasPrefix(value, "secretsmanager:"):
		out, err = r.fromSecretsManager(ctx, strings.TrimPrefix(value, "secretsmanager:"))
	case strings.HasPrefix(value, "s3://"):
		out, err = r.fromS3(ctx, strings.TrimPrefix(value, "s3://"))
	default:
		return value, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", value, err)
	}
	return strings.TrimRight(out, "\r\n"), nil
}

// ResolveAll resolves each value in order.
func (r *Resolver) ResolveAll(ctx context.Context, values []string) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		resolved, err := r.Resolve(ctx, v)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

func (r *Resolver) loadAWS(ctx context.Context) (aws.Config, error) {
	r.once.Do(func() {
		r.awsCfg, r.awsErr = config.LoadDefaultConfig(ctx)
		if r.awsErr != nil {
			r.awsErr = fmt.Errorf("failed to load AWS config: %w", r.awsErr)
		}
	})
	return r.awsCfg, r.awsErr
}

func (r *Resolver) fromSSM(ctx context.Context, name string) (string, error) {
	if r.ssm == nil {
		cfg, err := r.loadAWS(ctx)
		if err != nil {
			return "", err
		}
		r.ssm = ssm.NewFromConfig(cfg)
	}

	out, err := r.ssm.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("%w: parameter %s has no value", ErrNotFound, name)
	}
	return *out.Parameter.Value, nil
}

func (r *Resolver) fromSecretsManager(ctx context.Context, id string) (string, error) {
	if r.secretsManager == nil {
		cfg, err := r.loadAWS(ctx)
		if err != nil {
			return "", err
		}
		r.secretsManager = secretsmanager.NewFromConfig(cfg)
	}

	out, err := r.secretsManager.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", err
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("%w: secret %s has no string value", ErrNotFound, id)
	}
	return *out.SecretString, nil
}

func (r *Resolver) fromS3(ctx context.Context, location string) (string, error) {
	bucket, key, ok := strings.Cut(location, "/")
	if !ok || bucket == "" || key == "" {
		return "", fmt.Errorf("invalid S3 location %q: want s3://bucket/key", location)
	}

	if r.s3 == nil {
		cfg, err := r.loadAWS(ctx)
		if err != nil {
			return "", err
		}
		r.s3 = s3.NewFromConfig(cfg)
	}

	out, err := r.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read s3 object: %w", err)
	}
	return string(data), nil
}
