// @title           FoxxTalk API
// @version         1.0
// @description     Content API of the FoxxTalk blog. Reads are public; writes need a bearer token from /auth/login.
// @BasePath        /api
// @securityDefinitions.apikey BearerToken
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and the token returned by /auth/login.
package api
