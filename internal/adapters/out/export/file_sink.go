package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/spf13/afero"
)

var _ ports.ExportSink = (*FileSink)(nil)

// FileSink writes exports below a root directory. An existing file is never overwritten.
type FileSink struct {
	fs   afero.Fs
	root string
}

func NewFileSink(fs afero.Fs, root string) (*FileSink, error) {
	if fs == nil {
		return nil, errs.NewValueIsRequiredError("fs")
	}
	if root == "" {
		return nil, errs.NewValueIsRequiredError("root")
	}
	return &FileSink{fs: fs, root: root}, nil
}

func (s *FileSink) Write(ctx context.Context, export ports.PaymentExport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := Render(export)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.root, filepath.FromSlash(ObjectName(export)))
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", errs.NewAlreadyExportedError(export.InvoiceID.String())
		}
		return "", err
	}
	if _, err := f.Write(body); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
