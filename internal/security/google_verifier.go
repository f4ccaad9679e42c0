package security

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/medlembra/medlembra/internal/services"
)

var errGoogleAudienceMissing = errors.New("google client id is not configured")

type validateFunc func(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)

// GoogleVerifier checks Google Sign-In ID tokens against the app client id.
type GoogleVerifier struct {
	audience string
	validate validateFunc
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{audience: strings.TrimSpace(clientID), validate: idtoken.Validate}
}

func (verifier *GoogleVerifier) Verify(ctx context.Context, idToken string) (services.GoogleIdentity, error) {
	if verifier.audience == "" {
		return services.GoogleIdentity{}, errGoogleAudienceMissing
	}
	payload, err := verifier.validate(ctx, idToken, verifier.audience)
	if err != nil {
		return services.GoogleIdentity{}, err
	}
	return identityFromPayload(payload), nil
}

func identityFromPayload(payload *idtoken.Payload) services.GoogleIdentity {
	identity := services.GoogleIdentity{Subject: payload.Subject}
	identity.Email = stringClaim(payload.Claims, "email")
	identity.Name = stringClaim(payload.Claims, "name")
	identity.Picture = stringClaim(payload.Claims, "picture")
	return identity
}

func stringClaim(claims map[string]any, key string) string {
	value, _ := claims[key].(string)
	return strings.TrimSpace(value)
}
