package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"CrewServer/apps/social/internal/repository"
	"CrewServer/consts"
	"CrewServer/model"
	"CrewServer/pkg/id"
	"CrewServer/pkg/logger"
)

// MessageSink 最终投递出口，由通道分发器实现。
// 返回 false 表示投递失败，不写台账，留给下次同事件触发时重试。
type MessageSink interface {
	Send(ctx context.Context, userID, text string) bool
}

// systemActor 非用户动作（定时提醒等）在去重四元组里的触发者占位
const systemActor = "system"

type notifyServiceImpl struct {
	notifyRepo  repository.INotifyRepository
	connRepo    repository.IConnectionRepository
	crewRepo    repository.ICrewRepository
	attRepo     repository.IAttendanceRepository
	identitySvc IIdentityService
	sink        MessageSink
	// 提醒扫描窗口的半径：remindAt 落在 [now-window, now+window) 内算到点
	reminderWindow time.Duration
}

func NewNotifyService(notifyRepo repository.INotifyRepository, connRepo repository.IConnectionRepository,
	crewRepo repository.ICrewRepository, attRepo repository.IAttendanceRepository,
	identitySvc IIdentityService, sink MessageSink, reminderWindow time.Duration) INotifyService {
	if reminderWindow <= 0 {
		reminderWindow = 10 * time.Minute
	}
	return &notifyServiceImpl{
		notifyRepo:     notifyRepo,
		connRepo:       connRepo,
		crewRepo:       crewRepo,
		attRepo:        attRepo,
		identitySvc:    identitySvc,
		sink:           sink,
		reminderWindow: reminderWindow,
	}
}

// ==================== 过滤管道 ====================

// candidate 一条待过滤的投递候选
type candidate struct {
	userID string
	text   string
}

// prefAllows 偏好开关表。没有专属开关的类型（入团、位置呼叫）默认放行。
func prefAllows(pref *model.NotificationPreference, notifyType string) bool {
	switch notifyType {
	case model.NotifyTypeCrewCheckin:
		return pref.NotifyCrewCheckins
	case model.NotifyTypeFriendRsvp:
		return pref.NotifyFriendRsvps
	case model.NotifyTypeCrewRsvp:
		return pref.NotifyCrewRsvps
	case model.NotifyTypeEventReminder:
		return pref.NotifyEventReminder
	case model.NotifyTypeDailyDigest:
		return pref.NotifyDailyDigest
	default:
		return true
	}
}

// inQuietHours 判断本地时刻是否落在免打扰区间 [start, end)。
// start > end 表示跨午夜（如 22-8）；start == end 视为空区间。
func inQuietHours(pref *model.NotificationPreference, localNow time.Time) bool {
	if !pref.QuietHoursEnabled || pref.QuietHoursStart == pref.QuietHoursEnd {
		return false
	}
	hour := localNow.Hour()
	if pref.QuietHoursStart < pref.QuietHoursEnd {
		return hour >= pref.QuietHoursStart && hour < pref.QuietHoursEnd
	}
	return hour >= pref.QuietHoursStart || hour < pref.QuietHoursEnd
}

// loadLocation 解析偏好里的 IANA 时区，解析不了回退 UTC
func loadLocation(tz string) *time.Location {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// dispatch 共享投递路径：候选集逐个过管道，通过的才真正出站并记账。
// 管道顺序：自己 → 本轮已见（跨 Crew 去重）→ 偏好开关 → 每日上限
// → 免打扰 → 去重台账 → 投递 → 写台账 + 计数。
// 任何一步的仓储失败都只拦下这一个收件人，不中断整轮扇出。
func (s *notifyServiceImpl) dispatch(ctx context.Context, notifyType, actorID, referenceID string, candidates []candidate) int {
	visited := make(map[string]bool, len(candidates))
	now := time.Now()
	sent := 0

	for _, cand := range candidates {
		if cand.userID == actorID || visited[cand.userID] {
			continue
		}
		visited[cand.userID] = true

		pref, err := s.notifyRepo.GetPreference(ctx, cand.userID)
		if err != nil {
			logger.Warn(ctx, "读取通知偏好失败，跳过该收件人",
				logger.String("recipient", cand.userID), logger.ErrorField("error", err))
			notifySkippedTotal.WithLabelValues(notifyType, "preference_error").Inc()
			continue
		}
		if !prefAllows(pref, notifyType) {
			notifySkippedTotal.WithLabelValues(notifyType, "preference").Inc()
			continue
		}

		loc := loadLocation(pref.Timezone)
		localNow := now.In(loc)
		localMidnight := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, loc)
		localDate := localNow.Format("2006-01-02")

		// 计数读不到时按 0 处理：上限是尽力而为的软约束，不因缓存故障静默全体
		count, err := s.notifyRepo.CountSentToday(ctx, cand.userID, localMidnight, localDate)
		if err != nil {
			logger.Warn(ctx, "读取每日计数失败，按 0 处理",
				logger.String("recipient", cand.userID), logger.ErrorField("error", err))
			count = 0
		}
		if count >= int64(pref.DailyLimit) {
			notifySkippedTotal.WithLabelValues(notifyType, "rate_limit").Inc()
			continue
		}
		if inQuietHours(pref, localNow) {
			notifySkippedTotal.WithLabelValues(notifyType, "quiet_hours").Inc()
			continue
		}

		exists, err := s.notifyRepo.HasLogEntry(ctx, cand.userID, notifyType, referenceID, actorID)
		if err != nil {
			logger.Warn(ctx, "查询去重台账失败，跳过该收件人",
				logger.String("recipient", cand.userID), logger.ErrorField("error", err))
			notifySkippedTotal.WithLabelValues(notifyType, "ledger_error").Inc()
			continue
		}
		if exists {
			notifySkippedTotal.WithLabelValues(notifyType, "dedup").Inc()
			continue
		}

		if !s.sink.Send(ctx, cand.userID, cand.text) {
			notifySkippedTotal.WithLabelValues(notifyType, "send_failed").Inc()
			continue
		}

		entry := &model.NotificationLog{
			Id:          id.Next(),
			RecipientId: cand.userID,
			NotifyType:  notifyType,
			ReferenceId: referenceID,
			TriggeredBy: actorID,
		}
		if err = s.notifyRepo.InsertLog(ctx, entry); err != nil {
			// 台账写失败最坏是同事件重发一次，优于丢投递记录阻断后续
			logger.Error(ctx, "通知台账写入失败",
				logger.String("recipient", cand.userID), logger.ErrorField("error", err))
		}
		s.notifyRepo.IncrDailyCount(ctx, cand.userID, localDate)
		notifySentTotal.WithLabelValues(notifyType).Inc()
		sent++
	}
	return sent
}

// ==================== 候选集构造 ====================

// actorName 触发者的展示名，拿不到就用 id 本身
func (s *notifyServiceImpl) actorName(ctx context.Context, actorID string) string {
	names, err := s.identitySvc.DisplayNames(ctx, []string{actorID})
	if err != nil {
		return actorID
	}
	return names[actorID]
}

// crewCandidates 按触发者的未静音 Crew 构造候选集。
// 同一人进了多个共同 Crew 时保留第一个 Crew 的文案（dispatch 的 visited 保证只发一条）。
// 收件人侧对某 Crew 的静音在这里过滤：muted 成员直接不进候选集。
func (s *notifyServiceImpl) crewCandidates(ctx context.Context, actorID string, build func(crew *model.Crew) string) ([]candidate, error) {
	memberships, err := s.crewRepo.ListMemberships(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var out []candidate
	for _, m := range memberships {
		if m.Muted {
			continue
		}
		crew, cerr := s.crewRepo.GetByID(ctx, m.CrewId)
		if cerr != nil {
			if errors.Is(cerr, repository.ErrRecordNotFound) {
				continue
			}
			return nil, cerr
		}
		text := build(crew)
		members, merr := s.crewRepo.ListMembers(ctx, m.CrewId)
		if merr != nil {
			return nil, merr
		}
		for _, member := range members {
			if member.UserId == actorID || member.Muted {
				continue
			}
			out = append(out, candidate{userID: member.UserId, text: text})
		}
	}
	return out, nil
}

// NotifyCheckin 到场签到后向各 Crew 扇出通知
func (s *notifyServiceImpl) NotifyCheckin(ctx context.Context, actorID, referenceID, venueName string) (int, error) {
	name := s.actorName(ctx, actorID)
	candidates, err := s.crewCandidates(ctx, actorID, func(crew *model.Crew) string {
		return fmt.Sprintf("%s %s｜%s 已到 %s", crew.Emoji, crew.Name, name, venueName)
	})
	if err != nil {
		return 0, err
	}
	return s.dispatch(ctx, model.NotifyTypeCrewCheckin, actorID, referenceID, candidates), nil
}

// NotifyRSVP 出席登记后向好友与各 Crew 扇出通知。
// 好友侧与 Crew 侧是两条独立的去重键空间：既是好友又是队友的人
// 会各收到一条（好友视角一条、Crew 视角一条），这是有意的双路扇出。
func (s *notifyServiceImpl) NotifyRSVP(ctx context.Context, actorID, eventID, eventName string) (int, error) {
	name := s.actorName(ctx, actorID)
	sent := 0

	// 好友侧候选集取「把触发者列为 active 好友」的对侧行：
	// 收件人静音了触发者就不在其中，静音语义由收件人侧的行决定
	peers, err := s.connRepo.ListActivePeers(ctx, actorID)
	if err != nil {
		return 0, err
	}
	friendText := fmt.Sprintf("🎟 %s 也要去 %s", name, eventName)
	friendCands := make([]candidate, 0, len(peers))
	for _, peer := range peers {
		friendCands = append(friendCands, candidate{userID: peer, text: friendText})
	}
	sent += s.dispatch(ctx, model.NotifyTypeFriendRsvp, actorID, eventID, friendCands)

	crewCands, err := s.crewCandidates(ctx, actorID, func(crew *model.Crew) string {
		return fmt.Sprintf("%s %s｜%s 要去 %s", crew.Emoji, crew.Name, name, eventName)
	})
	if err != nil {
		return sent, err
	}
	sent += s.dispatch(ctx, model.NotifyTypeCrewRsvp, actorID, eventID, crewCands)
	return sent, nil
}

// NotifyCrewJoin 新成员入团后通知老成员
func (s *notifyServiceImpl) NotifyCrewJoin(ctx context.Context, actorID string, crewID int64) (int, error) {
	crew, err := s.crewRepo.GetByID(ctx, crewID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return 0, BizError(consts.CodeCrewNotFound)
		}
		return 0, err
	}

	name := s.actorName(ctx, actorID)
	text := fmt.Sprintf("👋 %s 加入了 %s %s", name, crew.Emoji, crew.Name)
	members, err := s.crewRepo.ListMembers(ctx, crewID)
	if err != nil {
		return 0, err
	}
	candidates := make([]candidate, 0, len(members))
	for _, m := range members {
		if m.UserId == actorID || m.Muted {
			continue
		}
		candidates = append(candidates, candidate{userID: m.UserId, text: text})
	}

	reference := strconv.FormatInt(crewID, 10)
	return s.dispatch(ctx, model.NotifyTypeCrewJoin, actorID, reference, candidates), nil
}

// NotifyLocate 在某个 Crew 内广播位置召集，发起人必须是成员
func (s *notifyServiceImpl) NotifyLocate(ctx context.Context, actorID string, crewID int64, referenceID, venueName string) (int, error) {
	if _, err := s.crewRepo.GetMember(ctx, crewID, actorID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return 0, BizError(consts.CodeNotCrewMember)
		}
		return 0, err
	}
	crew, err := s.crewRepo.GetByID(ctx, crewID)
	if err != nil {
		return 0, err
	}

	name := s.actorName(ctx, actorID)
	text := fmt.Sprintf("📍 %s %s｜%s 在 %s，快来集合", crew.Emoji, crew.Name, name, venueName)
	members, err := s.crewRepo.ListMembers(ctx, crewID)
	if err != nil {
		return 0, err
	}
	candidates := make([]candidate, 0, len(members))
	for _, m := range members {
		if m.UserId == actorID || m.Muted {
			continue
		}
		candidates = append(candidates, candidate{userID: m.UserId, text: text})
	}
	return s.dispatch(ctx, model.NotifyTypeLocate, actorID, referenceID, candidates), nil
}

// ComputeTargets 预览某次 RSVP 扇出会命中哪些接收者。
// 结果已扣掉去重台账里记过账的收件人，和真实扇出看到的集合一致。
func (s *notifyServiceImpl) ComputeTargets(ctx context.Context, actorID, eventID string) (*Targets, error) {
	targets := &Targets{Friends: []string{}, Crews: []*CrewTargets{}}

	loggedFriends, err := s.notifyRepo.ListLoggedRecipients(ctx, []string{model.NotifyTypeFriendRsvp}, eventID, actorID)
	if err != nil {
		return nil, err
	}
	peers, err := s.connRepo.ListActivePeers(ctx, actorID)
	if err != nil {
		return nil, err
	}
	for _, peer := range peers {
		if !loggedFriends[peer] {
			targets.Friends = append(targets.Friends, peer)
		}
	}

	loggedCrew, err := s.notifyRepo.ListLoggedRecipients(ctx, []string{model.NotifyTypeCrewRsvp}, eventID, actorID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.crewRepo.ListMemberships(ctx, actorID)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		if m.Muted {
			continue
		}
		crew, cerr := s.crewRepo.GetByID(ctx, m.CrewId)
		if cerr != nil {
			if errors.Is(cerr, repository.ErrRecordNotFound) {
				continue
			}
			return nil, cerr
		}
		members, merr := s.crewRepo.ListMembers(ctx, m.CrewId)
		if merr != nil {
			return nil, merr
		}
		ct := &CrewTargets{CrewId: crew.Id, Name: crew.Name, Emoji: crew.Emoji, UserIds: []string{}}
		for _, member := range members {
			if member.UserId == actorID || member.Muted || loggedCrew[member.UserId] {
				continue
			}
			ct.UserIds = append(ct.UserIds, member.UserId)
		}
		targets.Crews = append(targets.Crews, ct)
	}
	return targets, nil
}

// ==================== 活动提醒 ====================

// SweepEventReminders 扫一轮到点的活动提醒。
// remindAt 落进 [now-window, now+window) 即视为到点；到点的行无论
// 投递与否一律置 sent（偏好关闭也消费掉，不会每轮重评）。
// 出席记录或开始时间缺失的行保持未消费，等补齐快照后再进窗。
func (s *notifyServiceImpl) SweepEventReminders(ctx context.Context, now time.Time) (int, error) {
	reminderSweepTotal.Inc()

	reminders, err := s.notifyRepo.ListUnsentReminders(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range reminders {
		att, aerr := s.attRepo.Get(ctx, r.UserId, r.EventSourceId)
		if aerr != nil {
			if !errors.Is(aerr, repository.ErrRecordNotFound) {
				logger.Warn(ctx, "提醒扫描读出席记录失败",
					logger.Int64("reminder_id", r.Id), logger.ErrorField("error", aerr))
			}
			continue
		}
		if att.EventDate == nil {
			continue
		}

		remindAt := att.EventDate.Add(-time.Duration(r.RemindBefore) * time.Minute)
		diff := remindAt.Sub(now)
		if diff < -s.reminderWindow || diff >= s.reminderWindow {
			continue
		}

		text := fmt.Sprintf("⏰ %s 将于 %s 开始", att.EventName, att.EventDate.Format("15:04"))
		sent += s.dispatch(ctx, model.NotifyTypeEventReminder, systemActor, r.EventSourceId,
			[]candidate{{userID: r.UserId, text: text}})

		if merr := s.notifyRepo.MarkReminderSent(ctx, r.Id); merr != nil {
			logger.Error(ctx, "提醒置已消费失败",
				logger.Int64("reminder_id", r.Id), logger.ErrorField("error", merr))
		}
	}
	return sent, nil
}

// ==================== 偏好 ====================

// GetPreference 读用户通知偏好
func (s *notifyServiceImpl) GetPreference(ctx context.Context, userID string) (*model.NotificationPreference, error) {
	return s.notifyRepo.GetPreference(ctx, userID)
}

// UpdatePreference 保存用户通知偏好
func (s *notifyServiceImpl) UpdatePreference(ctx context.Context, pref *model.NotificationPreference) error {
	if pref.DailyLimit <= 0 {
		return BizError(consts.CodeParamError)
	}
	if pref.QuietHoursStart < 0 || pref.QuietHoursStart > 23 ||
		pref.QuietHoursEnd < 0 || pref.QuietHoursEnd > 23 {
		return BizError(consts.CodeParamError)
	}
	if _, err := time.LoadLocation(pref.Timezone); err != nil {
		return BizError(consts.CodeParamError)
	}
	return s.notifyRepo.UpsertPreference(ctx, pref)
}

// ScheduleReminder 给某次出席预约开场前提醒
func (s *notifyServiceImpl) ScheduleReminder(ctx context.Context, userID, eventSourceID string, remindBefore int) error {
	if remindBefore <= 0 || eventSourceID == "" {
		return BizError(consts.CodeReminderInvalid)
	}
	return s.notifyRepo.CreateReminder(ctx, &model.EventReminder{
		Id:            id.Next(),
		UserId:        userID,
		EventSourceId: eventSourceID,
		RemindBefore:  remindBefore,
	})
}
