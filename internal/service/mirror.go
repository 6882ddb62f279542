package service

import (
	"context"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/replica"
)

// Mirror copies committed state to the replica store. Implementations must not block.
type Mirror interface {
	Mirror(ctx context.Context, kind replica.Kind, id uint, fields replica.Fields)
}

type nopMirror struct{}

func (nopMirror) Mirror(context.Context, replica.Kind, uint, replica.Fields) {}

func orNop(m Mirror) Mirror {
	if m == nil {
		return nopMirror{}
	}
	return m
}

func userFields(u domain.User) replica.Fields {
	return replica.Fields{
		"uid":       u.ID,
		"user_name": u.Name,
		"email":     u.Email,
		"wallet":    u.Wallet,
		"birthday":  u.Birthday,
		"image":     u.Image,
		"status":    string(u.Role),
	}
}

func ticketFields(t domain.Ticket) replica.Fields {
	return replica.Fields{
		"lid":    t.ID,
		"number": t.Number,
		"price":  t.Price,
		"status": string(t.Status),
		"uid":    t.OwnerID,
		"rid":    t.RewardID,
	}
}
