package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"CrewServer/apps/social/internal/channel"
	"CrewServer/apps/social/internal/repository"
	"CrewServer/consts"
	"CrewServer/model"
	"CrewServer/pkg/logger"
)

// identityMemoSize 进程内 uid→规范身份 映射缓存的容量
const identityMemoSize = 4096

// AvatarStore 头像对象存储
type AvatarStore interface {
	UploadAvatar(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
}

type identityServiceImpl struct {
	identityRepo repository.IIdentityRepository
	federation   FederationClient // 可为 nil（纯本地模式）
	avatars      AvatarStore      // 可为 nil（未接对象存储）
	memo         *lru.Cache[string, string]
}

func NewIdentityService(identityRepo repository.IIdentityRepository, federation FederationClient, avatars AvatarStore) IIdentityService {
	memo, _ := lru.New[string, string](identityMemoSize)
	return &identityServiceImpl{
		identityRepo: identityRepo,
		federation:   federation,
		avatars:      avatars,
		memo:         memo,
	}
}

// ResolveCanonicalID 把平台侧用户标识解析为规范身份
//
// 解析顺序：进程内缓存 → 身份表 → 联邦层。本地没有这条映射时，
// 若联邦层给出的关联账号中有任何一个已在本地落过规范身份，就沿用它；
// 否则以当前账号自身为新的规范身份。缺失的身份行顺手补齐，
// 补齐失败只记日志，不影响本次解析结果。
func (s *identityServiceImpl) ResolveCanonicalID(ctx context.Context, platformUid string, hints *IdentityHints) (string, error) {
	prefix, _, ok := channel.SplitPlatformID(platformUid)
	if !ok {
		return "", BizError(consts.CodeIdentityInvalid)
	}

	if canonical, hit := s.memo.Get(platformUid); hit {
		return canonical, nil
	}

	row, err := s.identityRepo.GetByPlatformUid(ctx, platformUid)
	if err == nil {
		s.memo.Add(platformUid, row.CanonicalId)
		return row.CanonicalId, nil
	}
	if !errors.Is(err, repository.ErrRecordNotFound) {
		return "", err
	}

	// 本地首见，问联邦层这个账号还绑了谁
	var federationID string
	var linked []string
	if s.federation != nil {
		result, ferr := s.federation.LookupLinkedHandles(ctx, platformUid)
		if ferr != nil {
			logger.Warn(ctx, "联邦层查询失败，按单平台身份处理",
				logger.String("platform_uid", platformUid), logger.ErrorField("error", ferr))
		} else if result != nil {
			federationID = result.FederationId
			for _, handle := range result.LinkedHandles {
				if handle != platformUid && handle != "" {
					linked = append(linked, handle)
				}
			}
		}
	}

	canonical := platformUid
	if len(linked) > 0 {
		existing, berr := s.identityRepo.BatchGetByPlatformUids(ctx, linked)
		if berr != nil {
			logger.Warn(ctx, "关联账号查询失败，按单平台身份处理",
				logger.String("platform_uid", platformUid), logger.ErrorField("error", berr))
		} else {
			for _, e := range existing {
				if e.CanonicalId != "" {
					canonical = e.CanonicalId
					break
				}
			}
		}
	}

	rows := make([]*model.Identity, 0, len(linked)+1)
	self := &model.Identity{
		PlatformUid:  platformUid,
		Platform:     prefix,
		CanonicalId:  canonical,
		FederationId: federationID,
	}
	if hints != nil {
		self.DisplayName = hints.DisplayName
		self.AvatarUrl = hints.AvatarUrl
	}
	rows = append(rows, self)
	for _, handle := range linked {
		hp, _, hok := channel.SplitPlatformID(handle)
		if !hok {
			continue
		}
		rows = append(rows, &model.Identity{
			PlatformUid:  handle,
			Platform:     hp,
			CanonicalId:  canonical,
			FederationId: federationID,
		})
	}
	if werr := s.identityRepo.CreateRows(ctx, rows); werr != nil {
		logger.Warn(ctx, "身份行写入失败，本次解析结果不受影响",
			logger.String("platform_uid", platformUid), logger.ErrorField("error", werr))
	}

	s.memo.Add(platformUid, canonical)
	return canonical, nil
}

// LinkedIdentities 列出规范身份名下的全部平台身份行
func (s *identityServiceImpl) LinkedIdentities(ctx context.Context, canonicalID string) ([]*model.Identity, error) {
	rows, err := s.identityRepo.GetByCanonicalID(ctx, canonicalID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, BizError(consts.CodeIdentityNotFound)
	}
	return rows, nil
}

// SetAvatar 上传头像并更新该身份全部行的头像地址
func (s *identityServiceImpl) SetAvatar(ctx context.Context, canonicalID string, reader io.Reader, size int64, contentType string) (string, error) {
	if s.avatars == nil {
		return "", BizError(consts.CodeInternalError)
	}

	objectName := fmt.Sprintf("avatar/%s", strings.ReplaceAll(canonicalID, ":", "_"))
	avatarURL, err := s.avatars.UploadAvatar(ctx, objectName, reader, size, contentType)
	if err != nil {
		logger.Error(ctx, "头像上传失败", logger.String("canonical_id", canonicalID), logger.ErrorField("error", err))
		return "", err
	}

	if err = s.identityRepo.UpdateAvatar(ctx, canonicalID, avatarURL); err != nil {
		return "", err
	}
	return avatarURL, nil
}

// DisplayNames 批量取规范身份的展示名
// 同一身份多行取首个非空展示名，全空时回退为身份标识本身。
func (s *identityServiceImpl) DisplayNames(ctx context.Context, canonicalIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(canonicalIDs))
	if len(canonicalIDs) == 0 {
		return names, nil
	}

	rows, err := s.identityRepo.BatchGetByCanonicalIDs(ctx, canonicalIDs)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.DisplayName != "" && names[row.CanonicalId] == "" {
			names[row.CanonicalId] = row.DisplayName
		}
	}
	for _, cid := range canonicalIDs {
		if names[cid] == "" {
			names[cid] = cid
		}
	}
	return names, nil
}
