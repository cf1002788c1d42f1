package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/hosting/internal/api/middleware"
	"github.com/edvin/hosting/internal/core"
	"github.com/edvin/hosting/internal/flow"
	"github.com/edvin/hosting/internal/model"
	"github.com/edvin/hosting/internal/oauth2"
	"github.com/edvin/hosting/internal/policy"
)

// Authorize implements C4 (AuthorizeInit): the authorization endpoint's
// entry handler. It validates the request, runs pre-authentication
// checks, and hands off to a flow.Executor with FulfillmentStage
// appended as the terminal stage.
type Authorize struct {
	Logger       zerolog.Logger
	Providers    *core.ProviderService
	Sessions     flow.SessionStore
	Policy       policy.Checker
	Consent      *core.ConsentService
	AuthCodes    *core.AuthCodeService
	AccessTokens *core.AccessTokenService
	SigningKeys  *core.SigningKeyService
	FlowPlanner  flow.Planner
	Audit        *middleware.AuditLogger
	IssuerURL    string
	LoginURL     string
	ConsentTTL   time.Duration
}

// Authorize godoc
//
//	@Summary		OAuth2/OIDC authorization endpoint
//	@Description	Validates the authorization request, drives the caller through login/consent, and delivers a code, ID token, and/or access token to redirect_uri via the resolved response_mode.
//	@Tags			OIDC
//	@Param			client_id query string true "Registered client identifier"
//	@Param			redirect_uri query string true "Must match a registered redirect URI"
//	@Param			response_type query string true "code | token | id_token, space-joined"
//	@Param			response_mode query string false "query | fragment | form_post"
//	@Param			scope query string false "space-separated scopes"
//	@Param			state query string false "opaque value echoed back"
//	@Param			nonce query string false "required for id_token flows requesting openid"
//	@Param			prompt query string false "space-separated subset of none,consent,login"
//	@Param			max_age query int false "seconds since last login"
//	@Param			code_challenge query string false "PKCE"
//	@Param			code_challenge_method query string false "plain (default) or S256"
//	@Success		302
//	@Success		200 {string} string "form_post auto-submit page"
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		404
//	@Router			/authorize [get]
//	@Router			/authorize [post]
func (h *Authorize) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		if err := r.ParseForm(); err != nil || len(r.Form) == 0 {
			// Step 1: no parameters at all is treated as a probe, not a
			// malformed request — respond exactly like an unrouted path.
			http.NotFound(w, r)
			return
		}
	}

	lookup := func(clientID string) (*model.Provider, error) {
		return h.Providers.Lookup(r.Context(), clientID)
	}
	provision := func(provider *model.Provider, uri string) error {
		if err := h.Providers.ProvisionRedirectURI(r.Context(), provider, uri); err != nil {
			return err
		}
		h.Logger.Warn().Str("client_id", provider.ClientID).Str("redirect_uri", uri).
			Msg("auto-provisioned redirect_uri for provider with empty allow-list")
		return nil
	}

	rp, err := oauth2.ParseParams(h.Logger, r, lookup, provision)
	if err != nil {
		h.renderParamsError(w, r, err)
		return
	}

	loginUID, loginTime, authenticated := h.Sessions.LoginEvent(r)

	if rp.HasPrompt("none") && !authenticated {
		h.deliverError(w, rp, oauth2.ErrLoginRequired, "authentication is required")
		return
	}

	canAccess, err := h.Policy.CanAccess(r.Context(), loginUID, rp.Provider.ClientID)
	if err != nil {
		h.deliverError(w, rp, oauth2.ErrServerError, "policy check failed")
		return
	}
	if !canAccess {
		h.deliverError(w, rp, "access_denied", "access to this application is not permitted")
		return
	}

	if !authenticated {
		h.restart(w, r, rp)
		return
	}

	if rp.MaxAge != nil && time.Since(loginTime) > time.Duration(*rp.MaxAge)*time.Second {
		h.Sessions.SetLastLoginUID(w, r, loginUID)
		h.restart(w, r, rp)
		return
	}

	if rp.HasPrompt("login") {
		last, ok := h.Sessions.LastLoginUID(r)
		if !ok || last == loginUID {
			h.Sessions.SetLastLoginUID(w, r, loginUID)
			h.restart(w, r, rp)
			return
		}
	}

	if h.FlowPlanner != nil {
		applicable, err := h.FlowPlanner.Applicable(r.Context(), loginUID, rp.Provider.AuthorizationFlow)
		if err != nil {
			h.deliverError(w, rp, oauth2.ErrServerError, "flow applicability check failed")
			return
		}
		if !applicable {
			oauth2.WriteNoPermissionPage(w)
			return
		}
	}

	plan := flow.NewPlan()
	plan.Context[flow.CtxParams] = rp
	plan.Context[flow.CtxApplication] = rp.Provider
	plan.Context[flow.CtxTitle] = rp.Provider.Name
	plan.Context[flow.CtxConsentHeader] = "Allow " + rp.Provider.Name + " to access your account?"
	plan.Context[flow.CtxConsentPermissions] = oauth2.Descriptions(rp.Scope, rp.Provider)

	consentMode := flow.ConsentIfNotRecorded
	if rp.HasPrompt("consent") {
		consentMode = flow.ConsentAlwaysRequire
	}
	plan.Append(&flow.ConsentStage{
		Mode:     consentMode,
		Recorder: h.Consent,
		TTL:      h.ConsentTTL,
		ClientID: rp.Provider.ClientID,
		UserID:   loginUID,
		Scope:    rp.Scope,
	})
	plan.Append(&FulfillmentStage{
		h:        h,
		loginUID: loginUID,
		authTime: loginTime,
	})

	exec := flow.NewExecutor(rp.ResponseMode)
	if err := exec.Run(w, r, plan); err != nil {
		h.Logger.Error().Err(err).Str("client_id", rp.Provider.ClientID).Msg("flow executor failed")
		h.deliverError(w, rp, oauth2.ErrServerError, "internal error")
	}
}

func (h *Authorize) restart(w http.ResponseWriter, r *http.Request, rp *oauth2.RequestParams) {
	loc, err := flow.Restart(h.LoginURL, r.URL.Query())
	if err != nil {
		h.deliverError(w, rp, oauth2.ErrServerError, "invalid login_url configuration")
		return
	}
	oauth2.Redirect303(w, loc)
}

func (h *Authorize) deliverError(w http.ResponseWriter, rp *oauth2.RequestParams, code, description string) {
	payload := oauth2.SetError(rp.State, code, description)
	if err := oauth2.Deliver(w, rp.RedirectURI, rp.ResponseMode, payload); err != nil {
		h.Logger.Error().Err(err).Msg("failed to deliver authorize error")
	}
}

// renderParamsError dispatches a C1 parameter-validation failure to the
// right response shape depending on what, if anything, is known well
// enough to redirect the user agent back to the client.
func (h *Authorize) renderParamsError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *oauth2.AuthorizeError:
		h.Logger.Warn().Str("cause", e.Cause).Str("code", e.Code).Msg("authorize request rejected")
		responseMode := oauth2.ResolveResponseMode(r.URL.Query().Get("response_mode"), e.GrantType)
		payload := oauth2.SetError(e.State, e.Code, e.Description)
		if err := oauth2.Deliver(w, e.RedirectURI, responseMode, payload); err != nil {
			h.Logger.Error().Err(err).Msg("failed to deliver authorize error")
		}
	case *oauth2.ClientIdError:
		http.NotFound(w, r)
	case *oauth2.RedirectUriError:
		h.Logger.Warn().Str("cause", e.Cause).Str("redirect_uri", e.RedirectURI).Msg("redirect_uri rejected")
		oauth2.WriteBadRequestPage(w, oauth2.ErrInvalidRequest, "redirect_uri could not be verified")
	default:
		oauth2.WriteBadRequestPage(w, oauth2.ErrServerError, "the request could not be processed")
	}
}
