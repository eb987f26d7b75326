package mutation

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"ecoreport/internal/auth"
	"ecoreport/internal/utils"
	"ecoreport/internal/validate"
)

// uploadFileTypes lists the evidence content types accepted for upload.
var uploadFileTypes = map[string]string{
	"image/jpeg":      "image",
	"image/png":       "image",
	"image/webp":      "image",
	"image/gif":       "image",
	"video/mp4":       "video",
	"video/quicktime": "video",
	"application/pdf": "document",
}

var unsafeFilenameReg = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type UploadTicket struct {
	PresignedURL string `json:"presignedUrl"`
	FileType     string `json:"fileType"`
	Filename     string `json:"filename"`
	ContentType  string `json:"contentType"`
}

func (e *Executor) SignUpload(ctx context.Context, claims *auth.Claims, cmd *SignUploadCommand) Outcome {
	fileType, ok := uploadFileTypes[cmd.ContentType]
	if !ok {
		return ValidationFailed{Violations: validate.Violations{{Path: "contentType", Message: "unsupported file type"}}}
	}

	key := UploadKey(claims.AccountID, cmd.Filename)

	url, err := e.uploads.PresignUpload(ctx, key, cmd.ContentType)
	if err != nil {
		return InternalError{Err: fmt.Errorf("failed to presign upload %s: %w", key, err)}
	}

	return Succeeded{Value: &UploadTicket{
		PresignedURL: url,
		FileType:     fileType,
		Filename:     key,
		ContentType:  cmd.ContentType,
	}}
}

// UploadKey builds uploads/<account>/<nanoid>-<sanitized name>.
func UploadKey(accountID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.Trim(unsafeFilenameReg.ReplaceAllString(name, "-"), "-.")
	if name == "" {
		name = "file"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}

	return fmt.Sprintf("uploads/%s/%s-%s", accountID, utils.NanoIDSize(12), name)
}
