package totp_test

import (
	"testing"
	"time"

	"github.com/pquerna/otp"
	pqtotp "github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authenticator/pkg/totp"
)

// RFC 6238 Appendix B seeds, base32 encoded.
const (
	rfcSecretSHA1   = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	rfcSecretSHA256 = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZA===="
	rfcSecretSHA512 = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNA="
)

func TestCompute_RFC6238Vectors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		at     int64
		sha1   string
		sha256 string
		sha512 string
	}{
		{59, "94287082", "46119246", "90693936"},
		{1111111109, "07081804", "68084774", "25091201"},
		{1111111111, "14050471", "67062674", "99943326"},
		{1234567890, "89005924", "91819424", "93441116"},
		{2000000000, "69279037", "90698825", "38618901"},
		{20000000000, "65353130", "77737706", "47863826"},
	}

	for _, tt := range tests {
		t.Run(time.Unix(tt.at, 0).UTC().Format(time.RFC3339), func(t *testing.T) {
			t.Parallel()
			got, err := totp.Compute(rfcSecretSHA1, totp.SHA1, 8, 30, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.sha1, got)

			got, err = totp.Compute(rfcSecretSHA256, totp.SHA256, 8, 30, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.sha256, got)

			got, err = totp.Compute(rfcSecretSHA512, totp.SHA512, 8, 30, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.sha512, got)
		})
	}
}

func TestCompute_SixDigits(t *testing.T) {
	t.Parallel()
	got, err := totp.Compute(rfcSecretSHA1, totp.SHA1, 6, 30, 59)
	require.NoError(t, err)
	assert.Equal(t, "287082", got)

	// Truncated value 7081804 keeps its leading zero at six digits.
	got, err = totp.Compute(rfcSecretSHA1, totp.SHA1, 6, 30, 1111111109)
	require.NoError(t, err)
	assert.Equal(t, "081804", got)

	got, err = totp.Compute(rfcSecretSHA1, totp.SHA1, 10, 30, 59)
	require.NoError(t, err)
	assert.Equal(t, "1094287082", got)
}

func TestCompute_StepBoundary(t *testing.T) {
	t.Parallel()
	const period = 30
	for _, start := range []int64{0, 30, 1111111080, 1700000010} {
		first, err := totp.Compute(rfcSecretSHA1, totp.SHA1, 6, period, start)
		require.NoError(t, err)
		last, err := totp.Compute(rfcSecretSHA1, totp.SHA1, 6, period, start+period-1)
		require.NoError(t, err)
		next, err := totp.Compute(rfcSecretSHA1, totp.SHA1, 6, period, start+period)
		require.NoError(t, err)

		assert.Equal(t, first, last, "code must be constant within a step")
		assert.NotEqual(t, first, next, "code must change across the boundary")
	}
}

func TestCompute_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		secret  string
		alg     totp.Algorithm
		digits  int
		period  int
		at      int64
		wantErr error
	}{
		{"empty secret", "", totp.SHA1, 6, 30, 59, totp.ErrInvalidSecret},
		{"bang secret", "!!!", totp.SHA1, 6, 30, 59, totp.ErrInvalidSecret},
		{"secret with bang", "JBSWY3DP!!!", totp.SHA1, 6, 30, 59, totp.ErrInvalidSecret},
		{"unknown algorithm", rfcSecretSHA1, totp.Algorithm(9), 6, 30, 59, totp.ErrInvalidAlgorithm},
		{"zero digits", rfcSecretSHA1, totp.SHA1, 0, 30, 59, totp.ErrInvalidParameter},
		{"negative digits", rfcSecretSHA1, totp.SHA1, -6, 30, 59, totp.ErrInvalidParameter},
		{"too many digits", rfcSecretSHA1, totp.SHA1, 11, 30, 59, totp.ErrInvalidParameter},
		{"zero period", rfcSecretSHA1, totp.SHA1, 6, 0, 59, totp.ErrInvalidParameter},
		{"negative period", rfcSecretSHA1, totp.SHA1, 6, -30, 59, totp.ErrInvalidParameter},
		{"before epoch", rfcSecretSHA1, totp.SHA1, 6, 30, -1, totp.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, err := totp.Compute(tt.secret, tt.alg, tt.digits, tt.period, tt.at)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, code)
		})
	}
}

func TestCompute_MatchesReferenceImplementation(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	algs := map[totp.Algorithm]otp.Algorithm{
		totp.SHA1:   otp.AlgorithmSHA1,
		totp.SHA256: otp.AlgorithmSHA256,
		totp.SHA512: otp.AlgorithmSHA512,
	}
	digits := map[int]otp.Digits{6: otp.DigitsSix, 8: otp.DigitsEight}

	for alg, refAlg := range algs {
		for d, refDigits := range digits {
			for _, period := range []int{15, 30, 60} {
				for _, at := range []int64{0, 59, 1234567890, 1700000000, 2000000000} {
					want, err := pqtotp.GenerateCodeCustom(secret, time.Unix(at, 0), pqtotp.ValidateOpts{
						Period:    uint(period),
						Digits:    refDigits,
						Algorithm: refAlg,
					})
					require.NoError(t, err)

					got, err := totp.Compute(secret, alg, d, period, at)
					require.NoError(t, err)
					assert.Equal(t, want, got, "alg=%s digits=%d period=%d at=%d", alg, d, period, at)
				}
			}
		}
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	p := totp.Params{Secret: rfcSecretSHA256, Algorithm: totp.SHA256, Digits: 8, Period: 30}
	got, err := totp.Generate(p, time.Unix(1234567890, 0))
	require.NoError(t, err)
	assert.Equal(t, "91819424", got)
}

func TestParams_GetDefaults(t *testing.T) {
	t.Parallel()
	p := totp.Params{Secret: rfcSecretSHA1}.GetDefaults()
	assert.Equal(t, totp.SHA1, p.Algorithm)
	assert.Equal(t, totp.DefaultDigits, p.Digits)
	assert.Equal(t, totp.DefaultPeriod, p.Period)
	require.NoError(t, p.Validate())
}

func TestGenerateHOTP_RFC4226Vectors(t *testing.T) {
	t.Parallel()
	key := []byte("12345678901234567890")
	want := []uint32{755224, 287082, 359152, 969429, 338314, 254676, 287922, 162583, 399871, 520489}

	for counter, expected := range want {
		got, err := totp.GenerateHOTP(key, uint64(counter), totp.SHA1, 6)
		require.NoError(t, err)
		assert.Equal(t, expected, got, "counter %d", counter)
	}
}

func TestFormatCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "000042", totp.FormatCode(42, 6))
	assert.Equal(t, "00000000", totp.FormatCode(0, 8))
	assert.Equal(t, "123456", totp.FormatCode(123456, 6))
	assert.Len(t, totp.FormatCode(7, 10), 10)
}

func TestCounter(t *testing.T) {
	t.Parallel()
	assert.Equal(t, uint64(0), totp.Counter(29, 30))
	assert.Equal(t, uint64(1), totp.Counter(30, 30))
	assert.Equal(t, uint64(37037036), totp.Counter(1111111109, 30))
}

func TestRemaining(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 30*time.Second, totp.Remaining(time.Unix(60, 0), 30))
	assert.Equal(t, time.Second, totp.Remaining(time.Unix(59, 0), 30))
	assert.Equal(t, 500*time.Millisecond, totp.Remaining(time.UnixMilli(59500), 30))
	assert.Equal(t, time.Duration(0), totp.Remaining(time.Unix(59, 0), 0))
}

func TestVerify(t *testing.T) {
	t.Parallel()
	p := totp.Params{Secret: rfcSecretSHA1, Algorithm: totp.SHA1, Digits: 8, Period: 30}
	at := time.Unix(1111111109, 0)

	tests := []struct {
		name    string
		code    string
		at      time.Time
		skew    uint
		want    bool
		wantErr error
	}{
		{"current step", "07081804", at, 0, true, nil},
		{"previous step within skew", "07081804", at.Add(30 * time.Second), 1, true, nil},
		{"previous step without skew", "07081804", at.Add(30 * time.Second), 0, false, nil},
		{"wrong code", "00000000", at, 1, false, nil},
		{"short code", "0708180", at, 1, false, totp.ErrInvalidCode},
		{"non numeric", "0708180a", at, 1, false, totp.ErrInvalidCode},
		{"empty", "", at, 1, false, totp.ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := totp.Verify(p, tt.code, tt.at, tt.skew)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err := totp.Verify(totp.Params{Secret: "", Digits: 6, Period: 30}, "123456", at, 1)
	require.ErrorIs(t, err, totp.ErrInvalidSecret)
}
