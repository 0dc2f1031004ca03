package ruleset

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"

	verrors "github.com/vango-dev/rvalid/internal/errors"
)

// ObjectGetter reads objects from S3. *s3.Client implements it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config configures the client created by NewS3Client.
type S3Config struct {
	Region string `mapstructure:"region"`

	// Endpoint overrides the service endpoint for S3-compatible stores.
	Endpoint string `mapstructure:"endpoint"`

	// ForcePathStyle addresses buckets by path, as MinIO expects.
	ForcePathStyle bool `mapstructure:"force_path_style"`
}

// NewS3Client creates an S3 client from the default credential chain.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	getter ObjectGetter
}

// WithObjectGetter sets the client used for s3:// URIs.
func WithObjectGetter(g ObjectGetter) LoadOption {
	return func(o *loadOptions) {
		o.getter = g
	}
}

// LoadFile reads and parses a rule set file.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, verrors.New("V011").WithDetail(path).Wrap(err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "rule set %s", path)
	}
	rs.Source = path
	if rs.Name == "" {
		rs.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return rs, nil
}

// Load reads a rule set from a file path or an s3://bucket/key URI.
func Load(ctx context.Context, uri string, opts ...LoadOption) (*RuleSet, error) {
	if !strings.HasPrefix(uri, "s3://") {
		return LoadFile(uri)
	}

	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.getter == nil {
		return nil, verrors.New("V011").WithDetailf("%s: no S3 client configured", uri)
	}

	bucket, key, err := splitS3URI(uri)
	if err != nil {
		return nil, err
	}

	out, err := o.getter.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, verrors.New("V011").WithDetail(uri).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, verrors.New("V011").WithDetail(uri).Wrap(err)
	}

	rs, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "rule set %s", uri)
	}
	rs.Source = uri
	if rs.Name == "" {
		rs.Name = strings.TrimSuffix(filepath.Base(key), filepath.Ext(key))
	}
	return rs, nil
}

// LoadAll loads every URI into a Set.
func LoadAll(ctx context.Context, uris []string, opts ...LoadOption) (Set, error) {
	set := make(Set, len(uris))
	for _, uri := range uris {
		rs, err := Load(ctx, uri, opts...)
		if err != nil {
			return nil, err
		}
		if err := set.Add(rs); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func splitS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", verrors.New("V011").WithDetail(uri).Wrap(err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", verrors.New("V011").WithDetailf("%s: expected s3://bucket/key", uri)
	}
	return u.Host, key, nil
}
