package grpc

import (
	"github.com/dmitrijs2005/credvault/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const errorDomain = "credvault"

func codeFor(kind string) codes.Code {
	switch kind {
	case common.KindValidation:
		return codes.InvalidArgument
	case common.KindDuplicateUser:
		return codes.AlreadyExists
	case common.KindInvalidCredentials, common.KindUnauthorized, common.KindMissingToken,
		common.KindInvalidToken, common.KindExpiredToken:
		return codes.Unauthenticated
	case common.KindNotFound, common.KindUserNotFound:
		return codes.NotFound
	case common.KindRateLimited:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}

// toStatus converts an engine error into a gRPC status error. The stable
// kind travels as an ErrorInfo reason.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	kind := common.Kind(err)
	st := status.New(codeFor(kind), common.PublicMessage(err))
	if withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{Reason: kind, Domain: errorDomain}); derr == nil {
		st = withInfo
	}
	return st.Err()
}

// KindOf returns the error kind carried by a status error, or "".
func KindOf(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == errorDomain {
			return info.GetReason()
		}
	}
	return ""
}
