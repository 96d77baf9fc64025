// Package totp derives Time-based One-Time Passwords (RFC 6238) from stored credential
// secrets and provides the helpers an authenticator needs around that derivation.
//
// The package has no dependency on third-party OTP libraries: the HMAC primitive comes
// from the standard crypto packages and everything else (secret decoding, dynamic
// truncation, zero padding) is implemented here so behaviour is explicit and testable.
//
// # Architecture
//
//   • algorithm – algorithm.go defines the Algorithm enum (SHA1, SHA256, SHA512). It is the
//     only place where external spellings ("SHA1", "SHA-1", "sha256" ...) are converted;
//     ParseAlgorithm and the TextMarshaler/TextUnmarshaler pair are used at storage and
//     import boundaries so stringly-typed names never reach the engine.
//
//   • secret – secret.go normalises and decodes Base32 secrets (DecodeSecret) and creates
//     new ones (GenerateSecretKey). Padding, case and embedded whitespace are tolerated.
//
//   • engine – otp.go holds Compute, Generate, GenerateHOTP and FormatCode. The counter is
//     floor(unix/period), hashed as 8 big-endian bytes, dynamically truncated to 31 bits and
//     reduced modulo 10^digits. Verify checks a user supplied code with a skew window and
//     Remaining reports the time left in the current step.
//
//   • sealing – seal.go encrypts secrets at rest with AES-256-GCM under a per-credential
//     key derived via HKDF-SHA256 from a master key loaded from TOTP_ENCRYPTION_KEY.
//
// # Usage
//
//	code, err := totp.Compute("JBSWY3DPEHPK3PXP", totp.SHA1, 6, 30, time.Now().Unix())
//	if err != nil {
//	    // errors.Is(err, totp.ErrInvalidSecret) etc.
//	}
//
//	p := totp.Params{Secret: secret, Algorithm: totp.SHA256, Digits: 8, Period: 30}
//	code, _ = totp.Generate(p, time.Now())
//	ok, _ := totp.Verify(p, code, time.Now(), 1)
//
// # Error Handling
//
// Every exported operation returns a descriptive error wrapped with errors.Join.
// Inspect errors with errors.Is against ErrInvalidSecret, ErrInvalidAlgorithm,
// ErrInvalidParameter and ErrInvalidCode. Digits outside MinDigits..MaxDigits and
// periods below one second are rejected, never clamped.
//
// # See Also
//
//   • RFC 4226 – HMAC-Based One-Time Password (HOTP) Algorithm
//   • RFC 6238 – Time-Based One-Time Password (TOTP) Algorithm
package totp
