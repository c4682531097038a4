package server

import (
	"context"
	"errors"

	"infected-ranked/internal/domain"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

func toConnectError(ctx context.Context, procedure string, err error) error {
	code := connect.CodeInternal
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound), errors.Is(err, domain.ErrMatchNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, domain.ErrInvalidRole), errors.Is(err, domain.ErrInvalidSide), errors.Is(err, domain.ErrInvalidInput):
		code = connect.CodeInvalidArgument
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	}

	if code == connect.CodeInternal {
		zerolog.Ctx(ctx).Error().Err(err).Str("procedure", procedure).Msg("request failed")
	}
	return connect.NewError(code, err)
}
