package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("SHOWCASE_TEST_KEY", "a=b")
	c := New()
	assert.Equal(t, "a=b", c["SHOWCASE_TEST_KEY"])
}

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":     "9090",
		"BAD_INT":  "nine",
		"EMPTY":    "",
		"FLAG":     " true ",
		"TTL":      "30",
		"ORIGINS":  "https://a.test, ,https://b.test",
		"SPACED":   " 42 ",
		"BAD_BOOL": "maybe",
	}

	assert.Equal(t, "9090", GetString(c, "PORT", "8080"))
	assert.Equal(t, "8080", GetString(c, "EMPTY", "8080"))
	assert.Equal(t, "x", GetString(nil, "PORT", "x"))

	assert.Equal(t, 9090, GetInt(c, "PORT", 1))
	assert.Equal(t, 42, GetInt(c, "SPACED", 1))
	assert.Equal(t, 1, GetInt(c, "BAD_INT", 1))
	assert.Equal(t, 1, GetInt(c, "MISSING", 1))

	assert.True(t, GetBool(c, "FLAG", false))
	assert.True(t, GetBool(c, "BAD_BOOL", true))
	assert.False(t, GetBool(c, "MISSING", false))

	assert.Equal(t, 30*time.Second, GetSeconds(c, "TTL", 60))
	assert.Equal(t, time.Minute, GetSeconds(c, "MISSING", 60))

	assert.Equal(t, []string{"https://a.test", "https://b.test"}, GetList(c, "ORIGINS"))
	assert.Nil(t, GetList(c, "MISSING"))
}

func TestMerge(t *testing.T) {
	merged := Merge(map[string]string{"A": "1", "B": "2"}, map[string]string{"B": "3", "C": "4"})
	assert.Equal(t, map[string]string{"A": "1", "B": "3", "C": "4"}, merged)

	assert.Equal(t, map[string]string{"X": "y"}, Merge(nil, map[string]string{"X": "y"}))
}

type fakeSSM struct {
	pages [][]types.Parameter
	calls int
	err   error
}

func (f *fakeSSM) GetParametersByPath(_ context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[f.calls]
	f.calls++
	out := &ssm.GetParametersByPathOutput{Parameters: page}
	if f.calls < len(f.pages) {
		out.NextToken = aws.String("next")
	}
	return out, nil
}

func TestLoadParameters(t *testing.T) {
	client := &fakeSSM{pages: [][]types.Parameter{
		{{Name: aws.String("/showcase/prod/DATABASE_URL"), Value: aws.String("postgres://x")}},
		{{Name: aws.String("/showcase/prod/nested/RESEND_API_KEY"), Value: aws.String("re_123")}},
	}}

	values, err := loadParameters(context.Background(), client, "/showcase/prod")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"DATABASE_URL":   "postgres://x",
		"RESEND_API_KEY": "re_123",
	}, values)
	assert.Equal(t, 2, client.calls)
}

func TestLoadParametersError(t *testing.T) {
	_, err := loadParameters(context.Background(), &fakeSSM{err: errors.New("denied")}, "/x")
	assert.ErrorContains(t, err, "denied")
}
