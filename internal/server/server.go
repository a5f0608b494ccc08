package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/10664kls/monthlyp-annotator-api/internal/annotate"
	"github.com/labstack/echo/v4"
	edPb "google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	rpcStatus "google.golang.org/grpc/status"
)

// Response headers carrying the annotation summary.
const (
	HeaderMatched = "X-Annotate-Matched"
	HeaderSkipped = "X-Annotate-Skipped"
)

type Server struct {
	annotate *annotate.Service
}

func NewServer(annotate *annotate.Service) (*Server, error) {
	if annotate == nil {
		return nil, errors.New("annotate service is nil")
	}

	return &Server{
		annotate: annotate,
	}, nil
}

func (s *Server) Install(e *echo.Echo, route string, mws ...echo.MiddlewareFunc) error {
	if e == nil {
		return errors.New("echo is nil")
	}
	if route == "" {
		return errors.New("route is empty")
	}

	e.GET("/healthz", s.healthz)
	e.POST(route, s.annotateWorkbook, mws...)

	return nil
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status": "SERVING",
	})
}

func (s *Server) annotateWorkbook(c echo.Context) error {
	f, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		st, _ := rpcStatus.New(codes.InvalidArgument, "File must not be empty.").
			WithDetails(&edPb.BadRequest{
				FieldViolations: []*edPb.BadRequest_FieldViolation{
					{
						Field:       "file",
						Description: "File must be uploaded as multipart field \"file\".",
					},
				},
			})
		return st.Err()
	}
	if err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := s.annotate.Annotate(c.Request().Context(), &annotate.FileReq{
		OriginalName: f.Filename,
		ReadSeeker:   src,
	})
	if err != nil {
		return err
	}
	defer out.Close()

	h := c.Response().Header()
	h.Set(echo.HeaderContentDisposition, contentDisposition(out.Name))
	h.Set(HeaderMatched, strconv.Itoa(out.Report.Matched))
	h.Set(HeaderSkipped, strconv.Itoa(out.Report.Skipped))

	return c.Blob(http.StatusOK, annotate.MIMEType, out.Buffer.Bytes())
}
