// Package services implements the HTTP clients the sign-in runner talks to.
//
// # Cloud189
//
// [CloudService] implements [models.CloudClient] against the Cloud189 web portal, the open.e.189.cn
// auth server and the api.cloud.189.cn family API:
//
//   - Login follows the portal redirect to obtain lt/reqId, fetches the app and encryption config,
//     submits RSA-encrypted credentials, then trades the web session key for an API access token.
//   - Family endpoints are signed with an MD5 signature over the sorted query parameters.
//   - Requests are paced by a [rate.Limiter] shared by all concurrent attempts of one account.
//
// Each account gets its own [CloudService] (and cookie jar) through [NewCloudFactory].
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrLoginFailed] : any step of the login flow failed
//   - [shared.ErrSignAttempt] : a single sign-in request failed
//   - [shared.ErrCapacityQuery] : the capacity endpoint failed
//   - [shared.ErrAPIRequest] : transport, status or decode failure
package services
