package server

import (
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/labstack/echo/v4"
	edPb "google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorBody is the JSON payload of every failed request.
type ErrorBody struct {
	Error  string           `json:"error"`
	Reason string           `json:"reason,omitempty"`
	Fields []FieldViolation `json:"fields,omitempty"`
}

type FieldViolation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// HTTPErrorHandler renders gRPC statuses and echo errors as ErrorBody.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if s, ok := status.FromError(err); ok {
		writeStatus(c, s)
		return
	}

	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		writeError(c, http.StatusRequestEntityTooLarge, &ErrorBody{Error: "Request body is too large!"})
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		var s *status.Status
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			s = status.New(codes.NotFound, "Not found!")

		case http.StatusRequestEntityTooLarge:
			writeError(c, http.StatusRequestEntityTooLarge, &ErrorBody{Error: "Request body is too large!"})
			return

		case http.StatusTooManyRequests:
			s = status.New(codes.ResourceExhausted, "Too many requests!")

		case http.StatusBadRequest:
			s = status.New(codes.InvalidArgument, "Bad request!")

		case http.StatusInternalServerError:
			s = status.New(codes.Internal, "An internal server error occurred!")

		default:
			s = status.New(codes.Unknown, "An unknown error occurred!")
		}

		writeStatus(c, s)
		return
	}

	writeStatus(c, status.New(codes.Internal, "An internal server error occurred!"))
}

func writeStatus(c echo.Context, s *status.Status) {
	body := &ErrorBody{Error: s.Message()}

	for _, d := range s.Details() {
		switch d := d.(type) {
		case *edPb.ErrorInfo:
			body.Reason = d.GetReason()

		case *edPb.BadRequest:
			for _, v := range d.GetFieldViolations() {
				body.Fields = append(body.Fields, FieldViolation{
					Field:       v.GetField(),
					Description: v.GetDescription(),
				})
			}
		}
	}

	writeError(c, runtime.HTTPStatusFromCode(s.Code()), body)
}

func writeError(c echo.Context, code int, body *ErrorBody) {
	if c.Request().Method == http.MethodHead {
		c.NoContent(code)
		return
	}
	c.JSON(code, body)
}
