package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"CrewServer/apps/social/internal/repository"
	"CrewServer/consts"
	"CrewServer/model"
	"CrewServer/pkg/id"
)

const (
	// defaultCrewEmoji 团名里没有 emoji 时用的兜底团徽
	defaultCrewEmoji = "🎪"
	// joinLinkBase 加入链接前缀，拼上加入码即是可分享链接
	joinLinkBase = "https://crew.app/j"
	// defaultMaxMembers 与 crew 表的列默认值保持一致
	defaultMaxMembers = 50
)

type crewServiceImpl struct {
	crewRepo    repository.ICrewRepository
	identitySvc IIdentityService
}

func NewCrewService(crewRepo repository.ICrewRepository, identitySvc IIdentityService) ICrewService {
	return &crewServiceImpl{crewRepo: crewRepo, identitySvc: identitySvc}
}

// parseLeadingEmoji 把团名开头的 emoji 摘出来当团徽
// 没有就给兜底团徽，名字原样保留。
func parseLeadingEmoji(name string) (emoji, rest string) {
	r, size := utf8.DecodeRuneInString(name)
	if isEmojiRune(r) {
		return string(r), strings.TrimSpace(name[size:])
	}
	return defaultCrewEmoji, name
}

// isEmojiRune 覆盖常用 emoji 区段（杂项符号、交通、补充符号等）
func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF:
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	default:
		return false
	}
}

func (s *crewServiceImpl) toInfo(crew *model.Crew) *CrewInfo {
	return &CrewInfo{
		CrewId:     crew.Id,
		Name:       crew.Name,
		Emoji:      crew.Emoji,
		JoinCode:   crew.JoinCode,
		JoinLink:   fmt.Sprintf("%s/%s", joinLinkBase, crew.JoinCode),
		JoinMode:   crew.JoinMode,
		IsPublic:   crew.IsPublic,
		MaxMembers: crew.MaxMembers,
		ExpiresAt:  crew.ExpiresAt,
	}
}

// roleOf 取用户在团内的职级，非成员为 0
func (s *crewServiceImpl) roleOf(ctx context.Context, crewID int64, userID string) (int8, error) {
	member, err := s.crewRepo.GetMember(ctx, crewID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return member.Role, nil
}

// requireRole 校验用户职级不低于 minRole
func (s *crewServiceImpl) requireRole(ctx context.Context, crewID int64, userID string, minRole int8) error {
	role, err := s.roleOf(ctx, crewID, userID)
	if err != nil {
		return err
	}
	if role < minRole {
		return BizError(consts.CodeNoPermission)
	}
	return nil
}

// expired 临时团随活动过期，过期只在加入路径上拦截
func expired(crew *model.Crew, now time.Time) bool {
	return crew.IsTemporary && crew.ExpiresAt != nil && crew.ExpiresAt.Before(now)
}

// ==================== 建团与加入 ====================

// Create 建团
// 创建者成员行与团行同事务写入，creator 角色只在这里产生。
func (s *crewServiceImpl) Create(ctx context.Context, creatorID, name string, opts *CrewOptions) (*CrewInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, BizError(consts.CodeCrewNameRequired)
	}
	emoji, rest := parseLeadingEmoji(name)
	if rest == "" {
		return nil, BizError(consts.CodeCrewNameRequired)
	}

	crew := &model.Crew{
		Id:         id.Next(),
		Name:       rest,
		Emoji:      emoji,
		CreatedBy:  creatorID,
		JoinCode:   id.NewJoinCode(),
		JoinMode:   model.JoinModeOpen,
		MaxMembers: defaultMaxMembers,
		IsPublic:   true,
	}
	if opts != nil {
		crew.IsPublic = opts.IsPublic
		crew.IsTemporary = opts.IsTemporary
		crew.ExpiresAt = opts.ExpiresAt
		if opts.MaxMembers > 0 {
			crew.MaxMembers = opts.MaxMembers
		}
	}

	creator := &model.CrewMember{
		CrewId: crew.Id,
		UserId: creatorID,
		Role:   model.RoleCreator,
	}
	if err := s.crewRepo.CreateWithCreator(ctx, crew, creator); err != nil {
		return nil, err
	}
	return s.toInfo(crew), nil
}

// Join 凭码入团
// 先按成员个人邀请码找，找不到再按公共加入码找。个人码视为成员
// 直接拉人，可绕过审批模式；公共码在审批团只产生待审批申请。
func (s *crewServiceImpl) Join(ctx context.Context, userID, code string) (*JoinResult, error) {
	var crew *model.Crew
	var invite *model.CrewInvite

	invite, err := s.crewRepo.GetCrewInviteByCode(ctx, code)
	switch {
	case err == nil:
		if crew, err = s.crewRepo.GetByID(ctx, invite.CrewId); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return nil, BizError(consts.CodeCrewNotFound)
			}
			return nil, err
		}
	case errors.Is(err, repository.ErrRecordNotFound):
		invite = nil
		if crew, err = s.crewRepo.GetByJoinCode(ctx, code); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return nil, BizError(consts.CodeCrewNotFound)
			}
			return nil, err
		}
	default:
		return nil, err
	}

	// 加入策略链：过期 → 关闭 → 已在团内 → 满员 → 审批 → 直接入团
	if expired(crew, time.Now()) {
		return nil, BizError(consts.CodeCrewExpired)
	}
	if crew.JoinMode == model.JoinModeClosed {
		return nil, BizError(consts.CodeCrewClosed)
	}
	if _, merr := s.crewRepo.GetMember(ctx, crew.Id, userID); merr == nil {
		return &JoinResult{Outcome: AlreadyMember, Crew: s.toInfo(crew)}, nil
	} else if !errors.Is(merr, repository.ErrRecordNotFound) {
		return nil, merr
	}
	count, err := s.crewRepo.CountMembers(ctx, crew.Id)
	if err != nil {
		return nil, err
	}
	if count >= int64(crew.MaxMembers) {
		return nil, BizError(consts.CodeCrewFull)
	}
	if crew.JoinMode == model.JoinModeApproval && invite == nil {
		return s.enqueueRequest(ctx, userID, crew)
	}

	created, err := s.crewRepo.AddMember(ctx, &model.CrewMember{
		CrewId: crew.Id,
		UserId: userID,
		Role:   model.RoleMember,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return &JoinResult{Outcome: AlreadyMember, Crew: s.toInfo(crew)}, nil
	}
	if invite != nil {
		// 归因计数失败不影响入团
		_ = s.crewRepo.IncrementInviteUses(ctx, invite.Id)
	}
	return &JoinResult{Outcome: JoinedDirect, Crew: s.toInfo(crew)}, nil
}

// RequestJoin 对审批制团提交入团申请
func (s *crewServiceImpl) RequestJoin(ctx context.Context, userID string, crewID int64) (*JoinResult, error) {
	crew, err := s.crewRepo.GetByID(ctx, crewID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, BizError(consts.CodeCrewNotFound)
		}
		return nil, err
	}
	if expired(crew, time.Now()) {
		return nil, BizError(consts.CodeCrewExpired)
	}
	if crew.JoinMode == model.JoinModeClosed {
		return nil, BizError(consts.CodeCrewClosed)
	}
	if _, merr := s.crewRepo.GetMember(ctx, crewID, userID); merr == nil {
		return &JoinResult{Outcome: AlreadyMember, Crew: s.toInfo(crew)}, nil
	} else if !errors.Is(merr, repository.ErrRecordNotFound) {
		return nil, merr
	}

	// 开放团不需要申请，直接入团兜底
	if crew.JoinMode == model.JoinModeOpen {
		count, err := s.crewRepo.CountMembers(ctx, crew.Id)
		if err != nil {
			return nil, err
		}
		if count >= int64(crew.MaxMembers) {
			return nil, BizError(consts.CodeCrewFull)
		}
		created, err := s.crewRepo.AddMember(ctx, &model.CrewMember{
			CrewId: crew.Id,
			UserId: userID,
			Role:   model.RoleMember,
		})
		if err != nil {
			return nil, err
		}
		if !created {
			return &JoinResult{Outcome: AlreadyMember, Crew: s.toInfo(crew)}, nil
		}
		return &JoinResult{Outcome: JoinedDirect, Crew: s.toInfo(crew)}, nil
	}

	return s.enqueueRequest(ctx, userID, crew)
}

// enqueueRequest 落一条待审批申请；已有 pending 时复用而不是再插一条
func (s *crewServiceImpl) enqueueRequest(ctx context.Context, userID string, crew *model.Crew) (*JoinResult, error) {
	if _, err := s.crewRepo.GetPendingRequest(ctx, crew.Id, userID); err == nil {
		return &JoinResult{Outcome: JoinPending, Crew: s.toInfo(crew)}, nil
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, err
	}

	req := &model.JoinRequest{
		Id:     id.Next(),
		CrewId: crew.Id,
		UserId: userID,
		Status: model.RequestStatusPending,
	}
	if err := s.crewRepo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return &JoinResult{Outcome: JoinPending, Crew: s.toInfo(crew)}, nil
}

// ==================== 审批 ====================

// Approve 审批通过
// CAS 落终态：并发双审批只有一个生效，落败方拿到「申请已被处理」。
func (s *crewServiceImpl) Approve(ctx context.Context, reviewerID string, requestID int64) error {
	req, err := s.loadPendingRequest(ctx, reviewerID, requestID)
	if err != nil {
		return err
	}

	applied, err := s.crewRepo.ReviewRequest(ctx, requestID, model.RequestStatusApproved, reviewerID, time.Now())
	if err != nil {
		return err
	}
	if !applied {
		return BizError(consts.CodeRequestNotPending)
	}

	_, err = s.crewRepo.AddMember(ctx, &model.CrewMember{
		CrewId: req.CrewId,
		UserId: req.UserId,
		Role:   model.RoleMember,
	})
	return err
}

// Deny 驳回入团申请
func (s *crewServiceImpl) Deny(ctx context.Context, reviewerID string, requestID int64) error {
	if _, err := s.loadPendingRequest(ctx, reviewerID, requestID); err != nil {
		return err
	}

	applied, err := s.crewRepo.ReviewRequest(ctx, requestID, model.RequestStatusDenied, reviewerID, time.Now())
	if err != nil {
		return err
	}
	if !applied {
		return BizError(consts.CodeRequestNotPending)
	}
	return nil
}

func (s *crewServiceImpl) loadPendingRequest(ctx context.Context, reviewerID string, requestID int64) (*model.JoinRequest, error) {
	req, err := s.crewRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, BizError(consts.CodeRequestNotFound)
		}
		return nil, err
	}
	if err = s.requireRole(ctx, req.CrewId, reviewerID, model.RoleAdmin); err != nil {
		return nil, err
	}
	if req.Status != model.RequestStatusPending {
		return nil, BizError(consts.CodeRequestNotPending)
	}
	return req, nil
}

// PendingRequests 列出团内待审批申请
func (s *crewServiceImpl) PendingRequests(ctx context.Context, reviewerID string, crewID int64) ([]*PendingRequest, error) {
	if err := s.requireRole(ctx, crewID, reviewerID, model.RoleAdmin); err != nil {
		return nil, err
	}

	reqs, err := s.crewRepo.ListPendingRequests(ctx, crewID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.UserId)
	}
	names, err := s.identitySvc.DisplayNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*PendingRequest, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, &PendingRequest{
			RequestId:   r.Id,
			UserId:      r.UserId,
			DisplayName: names[r.UserId],
			CreatedAt:   r.RequestedAt,
		})
	}
	return out, nil
}

// ==================== 角色与设置 ====================

// Promote 提拔为管理员，只有创建者能做；creator 那一行永远不动
func (s *crewServiceImpl) Promote(ctx context.Context, actorID string, crewID int64, targetID string) error {
	return s.setRole(ctx, actorID, crewID, targetID, model.RoleAdmin)
}

// Demote 降回普通成员，只有创建者能做
func (s *crewServiceImpl) Demote(ctx context.Context, actorID string, crewID int64, targetID string) error {
	return s.setRole(ctx, actorID, crewID, targetID, model.RoleMember)
}

func (s *crewServiceImpl) setRole(ctx context.Context, actorID string, crewID int64, targetID string, role int8) error {
	if err := s.requireRole(ctx, crewID, actorID, model.RoleCreator); err != nil {
		return err
	}
	target, err := s.crewRepo.GetMember(ctx, crewID, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return BizError(consts.CodeNotCrewMember)
		}
		return err
	}
	if target.Role == model.RoleCreator {
		return BizError(consts.CodeCreatorImmutable)
	}
	if target.Role == role {
		return nil
	}
	return s.crewRepo.SetMemberRole(ctx, crewID, targetID, role)
}

// UpdateSettings 修改团的公开性与加入方式
func (s *crewServiceImpl) UpdateSettings(ctx context.Context, actorID string, crewID int64, update *SettingsUpdate) (*CrewInfo, error) {
	if err := s.requireRole(ctx, crewID, actorID, model.RoleAdmin); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if update != nil {
		if update.IsPublic != nil {
			fields["is_public"] = *update.IsPublic
		}
		if update.JoinMode != nil {
			if *update.JoinMode < model.JoinModeOpen || *update.JoinMode > model.JoinModeClosed {
				return nil, BizError(consts.CodeParamError)
			}
			fields["join_mode"] = *update.JoinMode
		}
	}
	if len(fields) > 0 {
		if err := s.crewRepo.UpdateSettings(ctx, crewID, fields); err != nil {
			return nil, err
		}
	}

	crew, err := s.crewRepo.GetByID(ctx, crewID)
	if err != nil {
		return nil, err
	}
	return s.toInfo(crew), nil
}

// ==================== 成员管理 ====================

// Leave 退团
// 创建者不能退：要么先转不出去（本范围不支持转让），要么团随活动过期。
func (s *crewServiceImpl) Leave(ctx context.Context, userID string, crewID int64) error {
	member, err := s.crewRepo.GetMember(ctx, crewID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return BizError(consts.CodeNotCrewMember)
		}
		return err
	}
	if member.Role == model.RoleCreator {
		return BizError(consts.CodeCannotLeaveAsOwner)
	}
	return s.crewRepo.RemoveMember(ctx, crewID, userID)
}

// Kick 移出成员，要求发起人职级高于对方
func (s *crewServiceImpl) Kick(ctx context.Context, actorID string, crewID int64, targetID string) error {
	actorRole, err := s.roleOf(ctx, crewID, actorID)
	if err != nil {
		return err
	}
	if actorRole < model.RoleAdmin {
		return BizError(consts.CodeNoPermission)
	}
	target, err := s.crewRepo.GetMember(ctx, crewID, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return BizError(consts.CodeNotCrewMember)
		}
		return err
	}
	if target.Role == model.RoleCreator {
		return BizError(consts.CodeCreatorImmutable)
	}
	if target.Role >= actorRole {
		return BizError(consts.CodeNoPermission)
	}
	return s.crewRepo.RemoveMember(ctx, crewID, targetID)
}

// MemberInvite 取成员个人的入团邀请码
func (s *crewServiceImpl) MemberInvite(ctx context.Context, userID string, crewID int64) (string, error) {
	if err := s.requireRole(ctx, crewID, userID, model.RoleMember); err != nil {
		return "", err
	}
	invite, err := s.crewRepo.GetOrCreateCrewInvite(ctx, crewID, userID, id.NewJoinCode())
	if err != nil {
		return "", err
	}
	return invite.InviteCode, nil
}

// Members 列出团成员
func (s *crewServiceImpl) Members(ctx context.Context, userID string, crewID int64) ([]*MemberInfo, error) {
	if err := s.requireRole(ctx, crewID, userID, model.RoleMember); err != nil {
		return nil, err
	}

	members, err := s.crewRepo.ListMembers(ctx, crewID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserId)
	}
	names, err := s.identitySvc.DisplayNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*MemberInfo, 0, len(members))
	for _, m := range members {
		out = append(out, &MemberInfo{
			UserId:      m.UserId,
			DisplayName: names[m.UserId],
			Role:        m.Role,
			Muted:       m.Muted,
			JoinedAt:    m.JoinedAt,
		})
	}
	return out, nil
}

// ToggleCrewMute 静音/取消静音某个团
func (s *crewServiceImpl) ToggleCrewMute(ctx context.Context, userID string, crewID int64) (bool, error) {
	member, err := s.crewRepo.GetMember(ctx, crewID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return false, BizError(consts.CodeNotCrewMember)
		}
		return false, err
	}

	next := !member.Muted
	if err = s.crewRepo.SetMemberMuted(ctx, crewID, userID, next); err != nil {
		return false, err
	}
	return next, nil
}

// Info 查看团信息
func (s *crewServiceImpl) Info(ctx context.Context, userID string, crewID int64) (*CrewInfo, error) {
	if err := s.requireRole(ctx, crewID, userID, model.RoleMember); err != nil {
		return nil, err
	}
	crew, err := s.crewRepo.GetByID(ctx, crewID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, BizError(consts.CodeCrewNotFound)
		}
		return nil, err
	}
	return s.toInfo(crew), nil
}
