package ruleset_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	verrors "github.com/vango-dev/rvalid/internal/errors"
	"github.com/vango-dev/rvalid/pkg/ruleset"
)

// MockS3Client is a mock implementation of the ObjectGetter interface
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "signup.yaml", signup)

	rs, err := ruleset.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "signup", rs.Name)
	assert.Equal(t, path, rs.Source)
}

func TestLoadFileNameFallback(t *testing.T) {
	path := writeFile(t, "profile.yml", "fields: [{name: a}]")

	rs, err := ruleset.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "profile", rs.Name)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := ruleset.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, verrors.New("V011")))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadFileParseError(t *testing.T) {
	path := writeFile(t, "broken.yaml", "fields: [")
	_, err := ruleset.LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, verrors.New("V010")))
	assert.Contains(t, err.Error(), path)
}

func TestValidateReportsFileLocation(t *testing.T) {
	path := writeFile(t, "bad.yaml", "fields:\n  - name: a\n    rules:\n      - rule: nope\n")
	rs, err := ruleset.LoadFile(path)
	require.NoError(t, err)

	err = rs.Validate(nil)
	var ve *verrors.Error
	require.True(t, errors.As(err, &ve))
	require.NotNil(t, ve.Location)
	assert.Equal(t, path, ve.Location.File)
	assert.Equal(t, 4, ve.Location.Line)
	assert.NotEmpty(t, ve.Context)
}

func TestLoadS3(t *testing.T) {
	client := new(MockS3Client)
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return *in.Bucket == "rules" && *in.Key == "forms/signup.yaml"
	}), mock.Anything).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader([]byte(signup))),
	}, nil)

	rs, err := ruleset.Load(context.Background(), "s3://rules/forms/signup.yaml", ruleset.WithObjectGetter(client))
	require.NoError(t, err)
	assert.Equal(t, "signup", rs.Name)
	assert.Equal(t, "s3://rules/forms/signup.yaml", rs.Source)
	client.AssertExpectations(t)
}

func TestLoadS3Errors(t *testing.T) {
	ctx := context.Background()

	_, err := ruleset.Load(ctx, "s3://rules/signup.yaml")
	assert.True(t, errors.Is(err, verrors.New("V011")), "no client configured")

	client := new(MockS3Client)
	_, err = ruleset.Load(ctx, "s3://rules", ruleset.WithObjectGetter(client))
	assert.True(t, errors.Is(err, verrors.New("V011")), "missing key")

	denied := errors.New("access denied")
	client.On("GetObject", mock.Anything, mock.Anything, mock.Anything).Return(nil, denied)
	_, err = ruleset.Load(ctx, "s3://rules/signup.yaml", ruleset.WithObjectGetter(client))
	assert.True(t, errors.Is(err, denied))
	assert.True(t, errors.Is(err, verrors.New("V011")))
}

func TestLoadAll(t *testing.T) {
	a := writeFile(t, "a.yaml", "name: a\nfields: [{name: x}]")
	b := writeFile(t, "b.yaml", "name: b\nfields: [{name: y}]")

	set, err := ruleset.LoadAll(context.Background(), []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, set.Names())

	_, err = ruleset.LoadAll(context.Background(), []string{a, a})
	assert.Error(t, err)
}
