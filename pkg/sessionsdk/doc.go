// Package sessionsdk is the client SDK for the session gateway.
//
// The SDK mirrors what a browser does with the gateway: session tokens live
// in HttpOnly cookies held by an http.CookieJar, never in application code.
// SDKClient covers the unauthenticated surface (login, register, federated
// status); SessionService layers a state machine on top that tracks the
// signed-in identity and transparently refreshes expired access tokens.
//
// Typical use:
//
//	client, err := sessionsdk.NewSDKClient("https://gateway.example.com")
//	if err != nil { ... }
//
//	session := client.NewSession()
//	if err := session.Bootstrap(ctx); err != nil { ... }
//
//	if !session.IsAuthenticated() {
//		if err := session.Login(ctx, username, password); err != nil { ... }
//	}
//
//	var out ProfileResponse
//	err = session.Get(ctx, "/api/profile", &out)
//
// Protected requests made through SessionService.Get/Post are replayed once
// after a coalesced token refresh when they hit a 401. A second 401 tears
// the session down.
package sessionsdk
