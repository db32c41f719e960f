package summarize

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/scribe/errors"
)

// zhipuTokenTTL bounds the lifetime of a generated Zhipu token.
const zhipuTokenTTL = 30 * time.Minute

// ZhipuToken exchanges an "id.secret" api key for a short-lived HS256 token.
// exp and timestamp are in milliseconds.
func ZhipuToken(apiKey string, now time.Time) (string, error) {
	id, secret, ok := strings.Cut(apiKey, ".")
	if !ok || id == "" || secret == "" {
		return "", errors.InvalidInput("api_key", "expected <id>.<secret>")
	}
	claims := jwt.MapClaims{
		"api_key":   id,
		"exp":       now.Add(zhipuTokenTTL).UnixMilli(),
		"timestamp": now.UnixMilli(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["sign_type"] = "SIGN"
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Internal(err)
	}
	return signed, nil
}
