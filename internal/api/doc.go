// Package api provides authzd's OAuth2/OpenID Connect authorization
// endpoint and its admin API for registering relying parties.
//
//	@title						Authorization Server API
//	@version					1.0
//	@description				OAuth2/OIDC authorization endpoint plus a small admin API for registering relying parties and API keys.
//	@BasePath					/
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
package api
