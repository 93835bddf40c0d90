/*
Package authsdk is a small client for the token service and the wire types
both sides share.

# Client vs Session

Client covers the unauthenticated calls: exchanging a refresh token and the
health endpoints.

	client := authsdk.NewClient("https://auth.example.com")
	session, err := client.AuthenticateWithRefreshToken(ctx, refreshToken)

A Session holds a token pair and refreshes the access token shortly before
it expires. Refresh tokens are single use, so the Session always swaps in
the refresh token that comes back with the new pair.

	me, err := session.Me(ctx)
	err = session.Logout(ctx)

# Errors

Every non-2xx response is returned as an *OAuth2Error. Compare with
errors.Is against the predefined values, or check Retryable to find out
whether the server asked you to try again later:

	if errors.Is(err, authsdk.ErrInvalidGrant) {
		// refresh token spent or unknown: sign in again
	}
*/
package authsdk
