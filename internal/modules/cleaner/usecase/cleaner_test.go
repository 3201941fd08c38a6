package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	cleanerout "mailsort/internal/modules/cleaner/adapter/out"
	"mailsort/internal/modules/cleaner/dto"
	"mailsort/internal/modules/cleaner/service"
	"mailsort/internal/modules/cleaner/usecase"
	ingestdomain "mailsort/internal/modules/ingest/domain"
	apperrors "mailsort/internal/platform/errors"
)

func TestCleanFileProducesIngestableCSV(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	in := filepath.Join(dir, "spam_emails.csv")
	raw := "subject,sender,body,date,extra\n" +
		"\"RE: Win!!!\",\"Prize Team <win@spam.io>\",\"<p>Claim at https://spam.io now</p>\n<p>Sent from my iPhone</p>\",2024-01-01,x\n" +
		",,,,\n"
	require.NoError(t, os.WriteFile(in, []byte(raw), 0o644))

	uc := usecase.NewInteractor(service.NewCleanerService(cleanerout.NewLocalFileSystem(), nil))
	out, err := uc.CleanFile(context.Background(), dto.CleanInput{In: in})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "spam_emails_cleaned.csv"), out.Out)
	require.Equal(t, 2, out.Processed)
	require.Equal(t, 0, out.Skipped)

	cleaned, err := os.ReadFile(out.Out)
	require.NoError(t, err)
	emails, err := ingestdomain.Parse(string(cleaned), "spam")
	require.NoError(t, err)
	require.Len(t, emails, 2)
	require.Equal(t, "Win!", emails[0].Subject)
	require.Equal(t, "win@spam.io", emails[0].Sender)
	require.Equal(t, "Claim at link now", emails[0].Body)
	require.Equal(t, "No Subject", emails[1].Subject)
	require.Equal(t, "Unknown Sender", emails[1].Sender)
}

func TestCleanFileRejectsBadInput(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewCleanerService(cleanerout.NewLocalFileSystem(), nil))
	_, err := uc.CleanFile(context.Background(), dto.CleanInput{In: "mail.txt"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = uc.CleanFile(context.Background(), dto.CleanInput{In: "a.csv", Out: "a.csv"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = uc.CleanFile(context.Background(), dto.CleanInput{In: filepath.Join(t.TempDir(), "missing.csv")})
	require.Error(t, err)
}
