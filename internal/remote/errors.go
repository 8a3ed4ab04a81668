package remote

import (
	"errors"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
)

// ClassifyError translates go-git errors into ClassifiedErrors so retry
// decisions and exit codes do not depend on message parsing downstream.
func ClassifyError(err error, op, url string) error {
	if err == nil {
		return nil
	}
	if _, ok := ferrors.AsClassified(err); ok {
		return err
	}

	b := ferrors.GitError("git "+op+" failed").
		WithCause(err).
		WithContext("op", op).
		WithContext("url", RedactURL(url))

	l := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired), errors.Is(err, transport.ErrAuthorizationFailed),
		strings.Contains(l, "authentication"), strings.Contains(l, "not authorized"), strings.Contains(l, "invalid credentials"):
		b.WithCategory(ferrors.CategoryAuth).WithRetry(ferrors.RetryUserAction)
	case errors.Is(err, transport.ErrRepositoryNotFound), errors.Is(err, git.ErrRemoteNotFound),
		strings.Contains(l, "not found"), strings.Contains(l, "does not exist"):
		b.WithCategory(ferrors.CategoryNotFound).WithRetry(ferrors.RetryNever)
	case strings.Contains(l, "rate limit"), strings.Contains(l, "too many requests"):
		b.WithCategory(ferrors.CategoryNetwork).RateLimit()
	case strings.Contains(l, "remote hung up"), strings.Contains(l, "connection reset"), strings.Contains(l, "connection refused"),
		strings.Contains(l, "timeout"), strings.Contains(l, "no route to host"), strings.Contains(l, "unexpected eof"),
		strings.Contains(l, "no such host"):
		b.WithCategory(ferrors.CategoryNetwork).Retryable()
	case strings.Contains(l, "non-fast-forward"), strings.Contains(l, "diverged"):
		b.WithContext("diverged", true).WithRetry(ferrors.RetryNever)
	case errors.Is(err, transport.ErrInvalidAuthMethod), strings.Contains(l, "unsupported protocol"), strings.Contains(l, "protocol not supported"):
		b.WithCategory(ferrors.CategoryConfig).WithRetry(ferrors.RetryNever)
	default:
		b.WithRetry(ferrors.RetryNever)
	}
	return b.Build()
}

// RedactURL hides credentials embedded in a remote URL.
func RedactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	at := strings.LastIndex(rest, "@")
	slash := strings.Index(rest, "/")
	if at < 0 || (slash >= 0 && at > slash) {
		return raw
	}
	return scheme + "://***@" + rest[at+1:]
}
