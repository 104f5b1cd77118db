package oauthflow

// ResponseType is the outcome of a consent flow.
type ResponseType string

const (
	ResponseSuccess ResponseType = "success"
	ResponseCancel  ResponseType = "cancel"
	ResponseError   ResponseType = "error"
)

// Response is delivered once per completed flow. On success Params holds
// "id_token" and, when issued, "access_token".
type Response struct {
	Type   ResponseType
	Params map[string]string
	Err    error
}

func errorResponse(err error) Response {
	return Response{Type: ResponseError, Err: err}
}
