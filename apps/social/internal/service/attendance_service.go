package service

import (
	"context"
	"sort"
	"time"

	"CrewServer/apps/social/internal/repository"
	"CrewServer/consts"
	"CrewServer/model"
)

type attendanceServiceImpl struct {
	attRepo     repository.IAttendanceRepository
	connRepo    repository.IConnectionRepository
	crewRepo    repository.ICrewRepository
	identitySvc IIdentityService
}

func NewAttendanceService(attRepo repository.IAttendanceRepository, connRepo repository.IConnectionRepository,
	crewRepo repository.ICrewRepository, identitySvc IIdentityService) IAttendanceService {
	return &attendanceServiceImpl{
		attRepo:     attRepo,
		connRepo:    connRepo,
		crewRepo:    crewRepo,
		identitySvc: identitySvc,
	}
}

// Rsvp 登记或更新出席状态
// 活动元信息随行快照进台账，查询圈子动向时不需要回活动源。
func (s *attendanceServiceImpl) Rsvp(ctx context.Context, userID, eventID string, status int8, visibility int8, meta *EventMeta) error {
	if status != model.RsvpGoing && status != model.RsvpMaybe {
		return BizError(consts.CodeRsvpStatusInvalid)
	}
	if visibility != model.VisibilityFlow && visibility != model.VisibilityPrivate {
		return BizError(consts.CodeParamError)
	}

	att := &model.Attendance{
		UserId:     userID,
		EventId:    eventID,
		Status:     status,
		Visibility: visibility,
	}
	if meta != nil {
		att.EventName = meta.Name
		att.EventDate = meta.Date
		att.EventVenue = meta.Venue
	}
	return s.attRepo.Upsert(ctx, att)
}

// Cancel 撤销出席登记
func (s *attendanceServiceImpl) Cancel(ctx context.Context, userID, eventID string) error {
	return s.attRepo.Delete(ctx, userID, eventID)
}

// flowIDs 算出用户视角的「圈子」：
// 本人未静音的好友（active 行）∪ 未静音 Crew 的全部队友，去掉本人。
func (s *attendanceServiceImpl) flowIDs(ctx context.Context, userID string) ([]string, error) {
	seen := make(map[string]bool)

	conns, err := s.connRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range conns {
		if c.Status == model.ConnStatusActive {
			seen[c.FriendId] = true
		}
	}

	memberships, err := s.crewRepo.ListMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		if m.Muted {
			continue
		}
		members, merr := s.crewRepo.ListMembers(ctx, m.CrewId)
		if merr != nil {
			return nil, merr
		}
		for _, member := range members {
			seen[member.UserId] = true
		}
	}

	delete(seen, userID)
	ids := make([]string, 0, len(seen))
	for uid := range seen {
		ids = append(ids, uid)
	}
	sort.Strings(ids)
	return ids, nil
}

// WhoIsGoing 查某活动圈子内谁会去，按「去 / 可能去」分组
func (s *attendanceServiceImpl) WhoIsGoing(ctx context.Context, userID, eventID string) (*EventRoster, error) {
	flow, err := s.flowIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	roster := &EventRoster{EventId: eventID, Going: []*RosterEntry{}, Maybe: []*RosterEntry{}}
	if len(flow) == 0 {
		return roster, nil
	}

	atts, err := s.attRepo.ListByEventForUsers(ctx, eventID, flow)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(atts))
	for _, a := range atts {
		ids = append(ids, a.UserId)
	}
	names, err := s.identitySvc.DisplayNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, a := range atts {
		entry := &RosterEntry{UserId: a.UserId, DisplayName: names[a.UserId]}
		if a.Status == model.RsvpGoing {
			roster.Going = append(roster.Going, entry)
		} else {
			roster.Maybe = append(roster.Maybe, entry)
		}
	}
	return roster, nil
}

// Upcoming 查圈子内即将到来的活动，按开始时间排序
func (s *attendanceServiceImpl) Upcoming(ctx context.Context, userID string) ([]*UpcomingEvent, error) {
	flow, err := s.flowIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(flow) == 0 {
		return []*UpcomingEvent{}, nil
	}

	atts, err := s.attRepo.ListUpcomingForUsers(ctx, flow, time.Now())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(atts))
	for _, a := range atts {
		ids = append(ids, a.UserId)
	}
	names, err := s.identitySvc.DisplayNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	byEvent := make(map[string]*UpcomingEvent)
	order := make([]string, 0)
	for _, a := range atts {
		ev, ok := byEvent[a.EventId]
		if !ok {
			ev = &UpcomingEvent{
				EventId:   a.EventId,
				EventName: a.EventName,
				Venue:     a.EventVenue,
				Date:      a.EventDate,
				Going:     []*RosterEntry{},
				Maybe:     []*RosterEntry{},
			}
			byEvent[a.EventId] = ev
			order = append(order, a.EventId)
		}
		entry := &RosterEntry{UserId: a.UserId, DisplayName: names[a.UserId]}
		if a.Status == model.RsvpGoing {
			ev.Going = append(ev.Going, entry)
		} else {
			ev.Maybe = append(ev.Maybe, entry)
		}
	}

	out := make([]*UpcomingEvent, 0, len(order))
	for _, eid := range order {
		out = append(out, byEvent[eid])
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Date, out[j].Date
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})
	return out, nil
}
