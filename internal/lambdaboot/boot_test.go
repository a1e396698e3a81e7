package lambdaboot

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type fakeSSM struct {
	calls  int
	name   string
	value  string
	err    error
	crypto bool
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls++
	f.name = aws.ToString(in.Name)
	f.crypto = aws.ToBool(in.WithDecryption)
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: aws.String(f.value)}}, nil
}

func TestFetchGeminiKey(t *testing.T) {
	tests := []struct {
		name      string
		envKey    string
		envParam  string
		ssm       *fakeSSM
		want      string
		wantParam string
		wantCalls int
		wantErr   bool
	}{
		{name: "env wins", envKey: "from-env", ssm: &fakeSSM{value: "x"}, want: "from-env"},
		{name: "default param", ssm: &fakeSSM{value: "from-ssm"}, want: "from-ssm", wantParam: DefaultGeminiKeyParam, wantCalls: 1},
		{name: "custom param", envParam: "/dev/key", ssm: &fakeSSM{value: "dev"}, want: "dev", wantParam: "/dev/key", wantCalls: 1},
		{name: "ssm error", ssm: &fakeSSM{err: errors.New("AccessDenied")}, wantCalls: 1, wantParam: DefaultGeminiKeyParam, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvGeminiKey, tt.envKey)
			t.Setenv(EnvGeminiKeyParam, tt.envParam)

			got, err := FetchGeminiKey(context.Background(), tt.ssm)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FetchGeminiKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FetchGeminiKey() = %q, want %q", got, tt.want)
			}
			if tt.ssm.calls != tt.wantCalls {
				t.Errorf("SSM calls = %d, want %d", tt.ssm.calls, tt.wantCalls)
			}
			if tt.wantCalls > 0 && (tt.ssm.name != tt.wantParam || !tt.ssm.crypto) {
				t.Errorf("GetParameter(%q, decrypt=%v)", tt.ssm.name, tt.ssm.crypto)
			}
		})
	}
}
