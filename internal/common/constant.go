package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
// carries the bearer access token.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// MaxAuditQueryLimit caps the number of audit entries returned per query.
const MaxAuditQueryLimit = 100
