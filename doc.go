// Package auth provides the authentication and access control core for the
// campus platform: a typed claims model, HS256 token issuance and
// verification, credential resolution, role based access policy, and HTTP
// helpers.
//
// Roles:
//   - Accounts carry one Role out of a closed set (guest, student, faculty,
//     admin). Roles are ordered so handlers can express floor checks with
//     IsAtLeast while route guards keep using explicit RoleSet membership.
//
// Tokens:
//   - TokenService signs and verifies JWTs whose claims carry the platform
//     wire fields (userId, email, userType) next to the registered claims.
//     Verification checks the signature before anything else; a tampered or
//     expired token surfaces as a categorized error, never a panic.
//
// Request flow:
//   - Resolver pulls the credential out of a request (session cookie first,
//     then bearer header), verifies it, and projects a ResolvedIdentity.
//     The middleware/guard package packages the same flow as middleware and
//     maps failures onto the 401/403 boundary contract.
package auth
