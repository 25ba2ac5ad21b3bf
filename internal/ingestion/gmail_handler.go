package ingestion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrTokenMissing means the mailbox has not been authorized yet
var ErrTokenMissing = errors.New("gmail token not found, authorize first")

// LoadOAuthConfig reads an OAuth client credentials file for read-only Gmail access
func LoadOAuthConfig(credentialsPath string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}
	return config, nil
}

// AuthCodeURL returns the consent page the user must visit to authorize access
func AuthCodeURL(config *oauth2.Config) string {
	return config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

// Authorize exchanges an authorization code and caches the token at tokenPath
func Authorize(ctx context.Context, config *oauth2.Config, code, tokenPath string) error {
	tok, err := config.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("unable to retrieve token: %w", err)
	}
	return saveToken(tokenPath, tok)
}

// tokenFromFile retrieves a token from a local file
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", file, err)
	}
	return tok, nil
}

// saveToken saves a token to a file path
func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	return nil
}

// GmailHandler downloads resume attachments from a mailbox
type GmailHandler struct {
	service *gmail.Service
	files   *FileHandler
	logger  *zap.Logger
}

// NewGmailHandler creates a Gmail handler from cached credentials. It returns
// ErrTokenMissing when tokenPath does not exist yet.
func NewGmailHandler(ctx context.Context, config *oauth2.Config, tokenPath string, files *FileHandler, log *zap.Logger) (*GmailHandler, error) {
	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTokenMissing
		}
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}

	return &GmailHandler{
		service: srv,
		files:   files,
		logger:  logger.OrNop(log),
	}, nil
}

// FetchAttachments saves supported resume attachments from messages whose
// subject matches and returns the saved paths. Files are named after the
// message ID so sender identity never reaches the reviewers.
func (gh *GmailHandler) FetchAttachments(ctx context.Context, subject string, progress func(name string)) ([]string, error) {
	const user = "me"
	query := fmt.Sprintf("subject:(%s) has:attachment", subject)

	r, err := gh.service.Users.Messages.List(user).Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %w", err)
	}
	if len(r.Messages) == 0 {
		return nil, fmt.Errorf("no messages found with subject: %s", subject)
	}

	var saved []string
	for _, msg := range r.Messages {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		message, err := gh.service.Users.Messages.Get(user, msg.Id).Context(ctx).Do()
		if err != nil {
			gh.logger.Warn("unable to retrieve message", zap.String("message_id", msg.Id), zap.Error(err))
			continue
		}

		for _, part := range resumeParts(message.Payload) {
			attachment, err := gh.service.Users.Messages.Attachments.Get(user, msg.Id, part.Body.AttachmentId).Context(ctx).Do()
			if err != nil {
				gh.logger.Warn("unable to retrieve attachment", zap.String(logger.FieldFile, part.Filename), zap.Error(err))
				continue
			}

			data, err := decodeAttachment(attachment.Data)
			if err != nil {
				gh.logger.Warn("unable to decode attachment", zap.String(logger.FieldFile, part.Filename), zap.Error(err))
				continue
			}

			name := attachmentFileName(msg.Id, part.Filename)
			path, err := gh.files.SaveUploadedFile(name, bytes.NewReader(data))
			if err != nil {
				gh.logger.Warn("unable to save attachment", zap.String(logger.FieldFile, name), zap.Error(err))
				continue
			}

			saved = append(saved, path)
			gh.logger.Info("downloaded attachment", zap.String(logger.FieldFile, name))
			if progress != nil {
				progress(name)
			}
		}
	}

	return saved, nil
}

// resumeParts walks a message payload and returns the attachment parts with
// a supported resume extension
func resumeParts(part *gmail.MessagePart) []*gmail.MessagePart {
	if part == nil {
		return nil
	}

	var out []*gmail.MessagePart
	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" && IsSupported(part.Filename) {
		out = append(out, part)
	}
	for _, child := range part.Parts {
		out = append(out, resumeParts(child)...)
	}
	return out
}

// attachmentFileName builds an upload name that does not reveal the sender
func attachmentFileName(messageID, filename string) string {
	return fmt.Sprintf("%s_%s", messageID, filepath.Base(filename))
}

// decodeAttachment decodes Gmail's URL-safe base64, with or without padding
func decodeAttachment(data string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(data)
}
