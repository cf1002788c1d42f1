package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/edvin/hosting/internal/flow"
	"github.com/edvin/hosting/internal/oauth2"
)

// FulfillmentStage implements C5: the terminal flow stage invoked once
// authentication and consent are complete. It mints the code/tokens and
// builds the response (C6).
type FulfillmentStage struct {
	h        *Authorize
	loginUID string
	authTime time.Time
}

func (s *FulfillmentStage) Name() string { return "fulfillment" }

func (s *FulfillmentStage) Run(w http.ResponseWriter, r *http.Request, plan *flow.Plan) (flow.Result, error) {
	rp, ok := flow.Get[*oauth2.RequestParams](plan, flow.CtxParams)
	if !ok {
		oauth2.WriteBadRequestPage(w, oauth2.ErrServerError, "authorization context was lost")
		return flow.ResultInteractive, nil
	}

	if rp.HasPrompt("none") && rp.HasPrompt("consent") {
		s.h.deliverError(w, rp, oauth2.ErrConsentRequired, "consent is required but prompt=none was requested")
		return flow.ResultInteractive, nil
	}

	if s.h.Audit != nil {
		s.h.Audit.Emit("AUTHORIZE_APPLICATION", map[string]any{
			"application": rp.Provider.Name,
			"client_id":   rp.Provider.ClientID,
			"flow_id":     plan.ID,
			"scopes":      strings.Join(rp.Scope, " "),
		})
	}

	payload, err := s.buildResponse(r, rp)
	if err != nil {
		switch ae := err.(type) {
		case *oauth2.AuthorizeError:
			s.h.Logger.Warn().Str("code", ae.Code).Msg("fulfillment rejected")
			s.h.deliverError(w, rp, ae.Code, ae.Description)
		case *oauth2.ClientIdError:
			oauth2.WriteBadRequestPage(w, oauth2.ErrInvalidRequest, "client is no longer valid")
		case *oauth2.RedirectUriError:
			oauth2.WriteBadRequestPage(w, oauth2.ErrInvalidRequest, "redirect_uri could not be verified")
		default:
			s.h.Logger.Error().Err(err).Msg("failed to build authorize response")
			s.h.deliverError(w, rp, oauth2.ErrServerError, "internal error")
		}
		return flow.ResultInteractive, nil
	}

	if err := oauth2.Deliver(w, rp.RedirectURI, rp.ResponseMode, payload); err != nil {
		s.h.Logger.Error().Err(err).Msg("failed to deliver authorize response")
	}
	return flow.ResultInteractive, nil
}

// buildResponse implements C6 for the resolved grant, following the
// construction order code → access-token string → hashes → claims →
// sign, since at_hash/c_hash cannot be computed until the values they
// hash exist.
func (s *FulfillmentStage) buildResponse(r *http.Request, rp *oauth2.RequestParams) (*oauth2.Payload, error) {
	sessionRef := sessionRefFromCookie(r)
	payload := oauth2.NewPayload(rp.State)

	var codeValue string
	if rp.WantsCode() {
		code, err := s.h.AuthCodes.Create(r.Context(), rp.Provider.ClientID, s.loginUID, rp.RedirectURI, sessionRef,
			rp.Scope, rp.Nonce, s.authTime, rp.Provider.AccessCodeValidity, rp.CodeChallenge, rp.CodeChallengeMethod)
		if err != nil {
			return nil, err
		}
		codeValue = code.Code
	}

	if rp.GrantType == oauth2.GrantAuthorizationCode {
		payload.Set("code", codeValue)
		return payload, nil
	}

	// Implicit and hybrid both commit to a signing key and always carry
	// token_type/expires_in, even when only an id_token is requested.
	key, err := s.h.SigningKeys.Active(r.Context())
	if err != nil {
		return nil, err
	}
	payload.Set("token_type", "Bearer")
	payload.Set("expires_in", oauth2.ExpiresIn(int(rp.Provider.AccessTokenValidity.Seconds())))

	var accessTokenValue string
	if containsField(rp.ResponseType, "token") {
		at, err := s.h.AccessTokens.Create(r.Context(), rp.Provider.ClientID, s.loginUID, sessionRef,
			rp.Scope, s.authTime, rp.Provider.AccessTokenValidity)
		if err != nil {
			return nil, err
		}
		accessTokenValue = at.Token
		payload.Set("access_token", accessTokenValue)
	}

	if containsField(rp.ResponseType, "id_token") {
		claims := oauth2.NewIDTokenClaims(s.h.IssuerURL, s.loginUID, rp.Provider.ClientID, s.authTime, rp.Provider.AccessTokenValidity, rp.Nonce)
		if accessTokenValue != "" {
			atHash, err := oauth2.LeftHash(key.Algorithm, accessTokenValue)
			if err != nil {
				return nil, err
			}
			claims.ATHash = atHash
		}
		if codeValue != "" {
			cHash, err := oauth2.LeftHash(key.Algorithm, codeValue)
			if err != nil {
				return nil, err
			}
			claims.CHash = cHash
		}
		idToken, err := oauth2.SignIDToken(key, claims)
		if err != nil {
			return nil, err
		}
		payload.Set("id_token", idToken)
	}

	if rp.GrantType == oauth2.GrantHybrid {
		payload.Set("code", codeValue)
	}

	return payload, nil
}

func containsField(responseType, field string) bool {
	for _, t := range strings.Fields(responseType) {
		if t == field {
			return true
		}
	}
	return false
}

func sessionRefFromCookie(r *http.Request) string {
	if c, err := r.Cookie("authzd_session"); err == nil {
		return c.Value
	}
	return ""
}
