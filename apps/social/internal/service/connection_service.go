package service

import (
	"context"
	"errors"
	"time"

	"CrewServer/apps/social/internal/repository"
	"CrewServer/consts"
	"CrewServer/model"
	"CrewServer/pkg/id"
)

type connectionServiceImpl struct {
	connRepo    repository.IConnectionRepository
	crewRepo    repository.ICrewRepository
	identitySvc IIdentityService
}

func NewConnectionService(connRepo repository.IConnectionRepository, crewRepo repository.ICrewRepository, identitySvc IIdentityService) IConnectionService {
	return &connectionServiceImpl{
		connRepo:    connRepo,
		crewRepo:    crewRepo,
		identitySvc: identitySvc,
	}
}

// Invite 取本人的好友邀请码
// 每人一个码，反复调用拿到的是同一个，可以长期贴在任何地方。
func (s *connectionServiceImpl) Invite(ctx context.Context, userID string) (string, error) {
	invite, err := s.connRepo.GetInviteByUser(ctx, userID)
	if err == nil {
		return invite.Code, nil
	}
	if !errors.Is(err, repository.ErrRecordNotFound) {
		return "", err
	}

	invite, err = s.connRepo.CreateInvite(ctx, &model.FriendInvite{
		UserId: userID,
		Code:   id.NewJoinCode(),
	})
	if err != nil {
		return "", err
	}
	return invite.Code, nil
}

// AcceptInvite 凭邀请码建立双向好友关系
// 已是好友时重复接受按成功处理（底层两行 upsert 天然幂等）。
func (s *connectionServiceImpl) AcceptInvite(ctx context.Context, userID, code string) error {
	invite, err := s.connRepo.GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return BizError(consts.CodeInviteNotFound)
		}
		return err
	}
	if invite.UserId == userID {
		return BizError(consts.CodeSelfInvite)
	}

	return s.connRepo.CreateRelation(ctx, userID, invite.UserId, time.Now())
}

// Remove 解除双向好友关系
func (s *connectionServiceImpl) Remove(ctx context.Context, userID, friendID string) error {
	return s.connRepo.DeleteRelation(ctx, userID, friendID)
}

// ToggleMute 静音/取消静音某个好友
// 只动本侧那一行，对方对我的状态完全不受影响。
func (s *connectionServiceImpl) ToggleMute(ctx context.Context, userID, friendID string) (bool, error) {
	rel, err := s.connRepo.GetRelation(ctx, userID, friendID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return false, BizError(consts.CodeNotFriend)
		}
		return false, err
	}

	switch rel.Status {
	case model.ConnStatusActive:
		if err = s.connRepo.SetStatus(ctx, userID, friendID, model.ConnStatusMuted); err != nil {
			return false, err
		}
		return true, nil
	case model.ConnStatusMuted:
		if err = s.connRepo.SetStatus(ctx, userID, friendID, model.ConnStatusActive); err != nil {
			return false, err
		}
		return false, nil
	default:
		return false, BizError(consts.CodeNotFriend)
	}
}

// List 返回好友与 Crew 的完整关系视图
func (s *connectionServiceImpl) List(ctx context.Context, userID string) (*FlowList, error) {
	conns, err := s.connRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	friendIDs := make([]string, 0, len(conns))
	for _, c := range conns {
		friendIDs = append(friendIDs, c.FriendId)
	}
	names, err := s.identitySvc.DisplayNames(ctx, friendIDs)
	if err != nil {
		return nil, err
	}

	friends := make([]*FriendEntry, 0, len(conns))
	for _, c := range conns {
		friends = append(friends, &FriendEntry{
			UserId:      c.FriendId,
			DisplayName: names[c.FriendId],
			Muted:       c.Status == model.ConnStatusMuted,
		})
	}

	memberships, err := s.crewRepo.ListMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}
	crews := make([]*CrewSummary, 0, len(memberships))
	for _, m := range memberships {
		crew, cerr := s.crewRepo.GetByID(ctx, m.CrewId)
		if cerr != nil {
			if errors.Is(cerr, repository.ErrRecordNotFound) {
				continue
			}
			return nil, cerr
		}
		count, cerr := s.crewRepo.CountMembers(ctx, m.CrewId)
		if cerr != nil {
			return nil, cerr
		}
		crews = append(crews, &CrewSummary{
			CrewId:      crew.Id,
			Name:        crew.Name,
			Emoji:       crew.Emoji,
			Role:        m.Role,
			Muted:       m.Muted,
			MemberCount: count,
		})
	}

	return &FlowList{Friends: friends, Crews: crews}, nil
}
