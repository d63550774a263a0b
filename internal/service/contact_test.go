package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangchien/portfolio/internal/apperror"
)

func TestContactSend(t *testing.T) {
	sender := &fakeSender{}
	svc := NewContactService(sender, testLogger())

	err := svc.Send(context.Background(), ContactInput{
		Name:    "  Alice ",
		Email:   "alice@example.org",
		Subject: "Hi",
		Message: "Love the photos",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Alice", sender.sent[0].Name)
	assert.Equal(t, "Love the photos", sender.sent[0].Body)
}

func TestContactSend_Validation(t *testing.T) {
	valid := ContactInput{Name: "a", Email: "a@b.co", Subject: "s", Message: "m"}

	tests := []struct {
		name   string
		mutate func(*ContactInput)
		field  string
	}{
		{"name", func(in *ContactInput) { in.Name = "" }, "name"},
		{"email missing", func(in *ContactInput) { in.Email = "" }, "email"},
		{"email invalid", func(in *ContactInput) { in.Email = "nope" }, "email"},
		{"subject", func(in *ContactInput) { in.Subject = " " }, "subject"},
		{"message", func(in *ContactInput) { in.Message = "" }, "message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			svc := NewContactService(sender, testLogger())
			in := valid
			tt.mutate(&in)

			err := svc.Send(context.Background(), in)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
			assert.Empty(t, sender.sent)
		})
	}
}

func TestContactSend_RelayFailureIsInternal(t *testing.T) {
	relayErr := errors.New("smtp down")
	svc := NewContactService(&fakeSender{err: relayErr}, testLogger())

	err := svc.Send(context.Background(), ContactInput{Name: "a", Email: "a@b.co", Subject: "s", Message: "m"})
	require.ErrorIs(t, err, relayErr)

	var appErr *apperror.AppError
	assert.False(t, errors.As(err, &appErr), "relay failures map to 500, not a client error")
}
