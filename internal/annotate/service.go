package annotate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/10664kls/monthlyp-annotator-api/internal/gen"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	edPb "google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	rpcStatus "google.golang.org/grpc/status"
)

// MIMEType is the content type of an .xlsx workbook.
const MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const errorDomain = "annotate"

type Service struct {
	annotator *Annotator
	tempDir   string
	zlog      *zap.Logger
}

func NewService(_ context.Context, annotator *Annotator, tempDir string, zlog *zap.Logger) (*Service, error) {
	if annotator == nil {
		return nil, errors.New("annotator is nil")
	}
	if zlog == nil {
		return nil, errors.New("logger is nil")
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if err := os.MkdirAll(tempDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	return &Service{
		annotator: annotator,
		tempDir:   tempDir,
		zlog:      zlog,
	}, nil
}

type FileReq struct {
	OriginalName string
	ReadSeeker   io.ReadSeeker
}

// AnnotatedFile is the serialized result. Close removes the uploaded copy
// from the temp dir; call it once the body has been sent.
type AnnotatedFile struct {
	Name   string
	Buffer *bytes.Buffer
	Report *Report

	tempPath string
}

func (f *AnnotatedFile) Close() error {
	if f == nil || f.tempPath == "" {
		return nil
	}
	err := os.Remove(f.tempPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Annotate stores the upload, annotates it and serializes the result.
// Every error it returns is a status carrying a message for the client.
func (s *Service) Annotate(ctx context.Context, in *FileReq) (*AnnotatedFile, error) {
	zlog := s.zlog.With(
		zap.String("Method", "Annotate"),
		zap.String("OriginalName", in.OriginalName),
	)

	out, err := s.annotateUpload(ctx, zlog, in)
	if err != nil {
		st := toStatus(err)
		if rpcStatus.Code(st) == codes.Internal {
			zlog.Error("failed to annotate workbook", zap.Error(err))
		}
		return nil, st
	}

	zlog.Info("workbook annotated",
		zap.Int("rows", out.Report.Rows),
		zap.Int("matched", out.Report.Matched),
		zap.Int("skipped", out.Report.Skipped),
	)

	return out, nil
}

func (s *Service) annotateUpload(ctx context.Context, zlog *zap.Logger, in *FileReq) (*AnnotatedFile, error) {
	mime, err := mimetype.DetectReader(in.ReadSeeker)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}

	// allow only xlsx, or a bare zip container excelize may still open
	switch {
	case mime.Is(MIMEType), mime.Is("application/zip"):

	default:
		return nil, unsupportedFileType(mime.String())
	}

	if _, err := in.ReadSeeker.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek file: %w", err)
	}

	location := filepath.Join(s.tempDir, gen.TempName())
	if err := saveUpload(location, in.ReadSeeker); err != nil {
		return nil, err
	}
	out := &AnnotatedFile{
		Name:     "merged_" + gen.BaseName(in.OriginalName),
		tempPath: location,
	}

	if err := s.annotate(ctx, out); err != nil {
		if cerr := out.Close(); cerr != nil {
			zlog.Warn("failed to remove temp file", zap.String("path", location), zap.Error(cerr))
		}
		return nil, err
	}

	return out, nil
}

func (s *Service) annotate(_ context.Context, out *AnnotatedFile) error {
	f, err := excelize.OpenFile(out.tempPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer f.Close()

	report, err := s.annotator.Annotate(f)
	if err != nil {
		return err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to write to buffer: %w", err)
	}

	out.Buffer = buf
	out.Report = report
	return nil
}

func saveUpload(location string, src io.Reader) error {
	dst, err := os.OpenFile(location, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(location)
		return fmt.Errorf("failed to copy upload: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(location)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return nil
}

func unsupportedFileType(mime string) error {
	s, _ := rpcStatus.New(
		codes.InvalidArgument,
		fmt.Sprintf("Unsupported file type (%s). Please upload an .xlsx workbook.", mime),
	).WithDetails(&edPb.ErrorInfo{
		Reason:   "UNSUPPORTED_FILE_TYPE",
		Domain:   errorDomain,
		Metadata: map[string]string{"mimeType": mime},
	})

	return s.Err()
}

// toStatus converts annotation errors into API errors carrying their details.
func toStatus(err error) error {
	if _, ok := rpcStatus.FromError(err); ok {
		return err
	}

	var sheetErr *SheetNotFoundError
	if errors.As(err, &sheetErr) {
		s, _ := rpcStatus.New(codes.InvalidArgument, sheetErr.Error()).
			WithDetails(&edPb.ErrorInfo{
				Reason: "SHEET_NOT_FOUND",
				Domain: errorDomain,
				Metadata: map[string]string{
					"sheet": sheetErr.Sheet,
					"role":  sheetErr.Role,
				},
			})
		return s.Err()
	}

	var colErr *MissingColumnsError
	if errors.As(err, &colErr) {
		violations := make([]*edPb.BadRequest_FieldViolation, 0, len(colErr.Columns))
		for _, c := range colErr.Columns {
			violations = append(violations, &edPb.BadRequest_FieldViolation{
				Field:       c.Name,
				Description: fmt.Sprintf("No header in sheet %q matches any of %q.", colErr.Sheet, c.Patterns),
			})
		}
		s, _ := rpcStatus.New(codes.InvalidArgument, colErr.Error()).
			WithDetails(&edPb.BadRequest{FieldViolations: violations})
		return s.Err()
	}

	if errors.Is(err, ErrUnreadableWorkbook) {
		s, _ := rpcStatus.New(codes.InvalidArgument, "The uploaded file is not a readable workbook.").
			WithDetails(&edPb.ErrorInfo{
				Reason: "UNREADABLE_WORKBOOK",
				Domain: errorDomain,
			})
		return s.Err()
	}

	return rpcStatus.Error(codes.Internal, err.Error())
}
