package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"CrewServer/model"
	"CrewServer/pkg/id"
	"CrewServer/pkg/logger"
)

var serviceTestOnce sync.Once

func initServiceTest(t *testing.T) {
	t.Helper()
	serviceTestOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		id.Init(1)
	})
}

// ==================== 身份 ====================

type fakeIdentityRepo struct {
	getByPlatformUidFn        func(context.Context, string) (*model.Identity, error)
	batchGetByPlatformUidsFn  func(context.Context, []string) ([]*model.Identity, error)
	getByCanonicalIDFn        func(context.Context, string) ([]*model.Identity, error)
	batchGetByCanonicalIDsFn  func(context.Context, []string) ([]*model.Identity, error)
	createRowsFn              func(context.Context, []*model.Identity) error
	updateAvatarFn            func(context.Context, string, string) error
}

func (f *fakeIdentityRepo) GetByPlatformUid(ctx context.Context, uid string) (*model.Identity, error) {
	if f.getByPlatformUidFn == nil {
		return nil, errors.New("unexpected GetByPlatformUid call")
	}
	return f.getByPlatformUidFn(ctx, uid)
}

func (f *fakeIdentityRepo) BatchGetByPlatformUids(ctx context.Context, uids []string) ([]*model.Identity, error) {
	if f.batchGetByPlatformUidsFn == nil {
		return nil, errors.New("unexpected BatchGetByPlatformUids call")
	}
	return f.batchGetByPlatformUidsFn(ctx, uids)
}

func (f *fakeIdentityRepo) GetByCanonicalID(ctx context.Context, cid string) ([]*model.Identity, error) {
	if f.getByCanonicalIDFn == nil {
		return nil, errors.New("unexpected GetByCanonicalID call")
	}
	return f.getByCanonicalIDFn(ctx, cid)
}

func (f *fakeIdentityRepo) BatchGetByCanonicalIDs(ctx context.Context, cids []string) ([]*model.Identity, error) {
	if f.batchGetByCanonicalIDsFn == nil {
		return nil, errors.New("unexpected BatchGetByCanonicalIDs call")
	}
	return f.batchGetByCanonicalIDsFn(ctx, cids)
}

func (f *fakeIdentityRepo) CreateRows(ctx context.Context, rows []*model.Identity) error {
	if f.createRowsFn == nil {
		return errors.New("unexpected CreateRows call")
	}
	return f.createRowsFn(ctx, rows)
}

func (f *fakeIdentityRepo) UpdateAvatar(ctx context.Context, cid, url string) error {
	if f.updateAvatarFn == nil {
		return errors.New("unexpected UpdateAvatar call")
	}
	return f.updateAvatarFn(ctx, cid, url)
}

type fakeFederation struct {
	lookupFn func(context.Context, string) (*FederationResult, error)
}

func (f *fakeFederation) LookupLinkedHandles(ctx context.Context, uid string) (*FederationResult, error) {
	if f.lookupFn == nil {
		return nil, errors.New("unexpected LookupLinkedHandles call")
	}
	return f.lookupFn(ctx, uid)
}

// fakeIdentityService 供依赖展示名的服务用，默认把 id 当展示名
type fakeIdentityService struct {
	resolveFn      func(context.Context, string, *IdentityHints) (string, error)
	displayNamesFn func(context.Context, []string) (map[string]string, error)
}

func (f *fakeIdentityService) ResolveCanonicalID(ctx context.Context, uid string, hints *IdentityHints) (string, error) {
	if f.resolveFn == nil {
		return "", errors.New("unexpected ResolveCanonicalID call")
	}
	return f.resolveFn(ctx, uid, hints)
}

func (f *fakeIdentityService) LinkedIdentities(context.Context, string) ([]*model.Identity, error) {
	return nil, errors.New("unexpected LinkedIdentities call")
}

func (f *fakeIdentityService) SetAvatar(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", errors.New("unexpected SetAvatar call")
}

func (f *fakeIdentityService) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	if f.displayNamesFn != nil {
		return f.displayNamesFn(ctx, ids)
	}
	names := make(map[string]string, len(ids))
	for _, cid := range ids {
		names[cid] = cid
	}
	return names, nil
}

// ==================== 好友关系 ====================

type fakeConnRepo struct {
	getInviteByUserFn func(context.Context, string) (*model.FriendInvite, error)
	createInviteFn    func(context.Context, *model.FriendInvite) (*model.FriendInvite, error)
	getInviteByCodeFn func(context.Context, string) (*model.FriendInvite, error)
	createRelationFn  func(context.Context, string, string, time.Time) error
	deleteRelationFn  func(context.Context, string, string) error
	getRelationFn     func(context.Context, string, string) (*model.Connection, error)
	setStatusFn       func(context.Context, string, string, int8) error
	listByUserFn      func(context.Context, string) ([]*model.Connection, error)
	listActivePeersFn func(context.Context, string) ([]string, error)
}

func (f *fakeConnRepo) GetInviteByUser(ctx context.Context, userID string) (*model.FriendInvite, error) {
	if f.getInviteByUserFn == nil {
		return nil, errors.New("unexpected GetInviteByUser call")
	}
	return f.getInviteByUserFn(ctx, userID)
}

func (f *fakeConnRepo) CreateInvite(ctx context.Context, inv *model.FriendInvite) (*model.FriendInvite, error) {
	if f.createInviteFn == nil {
		return nil, errors.New("unexpected CreateInvite call")
	}
	return f.createInviteFn(ctx, inv)
}

func (f *fakeConnRepo) GetInviteByCode(ctx context.Context, code string) (*model.FriendInvite, error) {
	if f.getInviteByCodeFn == nil {
		return nil, errors.New("unexpected GetInviteByCode call")
	}
	return f.getInviteByCodeFn(ctx, code)
}

func (f *fakeConnRepo) CreateRelation(ctx context.Context, userID, friendID string, acceptedAt time.Time) error {
	if f.createRelationFn == nil {
		return errors.New("unexpected CreateRelation call")
	}
	return f.createRelationFn(ctx, userID, friendID, acceptedAt)
}

func (f *fakeConnRepo) DeleteRelation(ctx context.Context, userID, friendID string) error {
	if f.deleteRelationFn == nil {
		return errors.New("unexpected DeleteRelation call")
	}
	return f.deleteRelationFn(ctx, userID, friendID)
}

func (f *fakeConnRepo) GetRelation(ctx context.Context, userID, friendID string) (*model.Connection, error) {
	if f.getRelationFn == nil {
		return nil, errors.New("unexpected GetRelation call")
	}
	return f.getRelationFn(ctx, userID, friendID)
}

func (f *fakeConnRepo) SetStatus(ctx context.Context, userID, friendID string, status int8) error {
	if f.setStatusFn == nil {
		return errors.New("unexpected SetStatus call")
	}
	return f.setStatusFn(ctx, userID, friendID, status)
}

func (f *fakeConnRepo) ListByUser(ctx context.Context, userID string) ([]*model.Connection, error) {
	if f.listByUserFn == nil {
		return nil, errors.New("unexpected ListByUser call")
	}
	return f.listByUserFn(ctx, userID)
}

func (f *fakeConnRepo) ListActivePeers(ctx context.Context, userID string) ([]string, error) {
	if f.listActivePeersFn == nil {
		return nil, errors.New("unexpected ListActivePeers call")
	}
	return f.listActivePeersFn(ctx, userID)
}

// ==================== Crew ====================

type fakeCrewRepo struct {
	createWithCreatorFn     func(context.Context, *model.Crew, *model.CrewMember) error
	getByIDFn               func(context.Context, int64) (*model.Crew, error)
	getByJoinCodeFn         func(context.Context, string) (*model.Crew, error)
	updateSettingsFn        func(context.Context, int64, map[string]interface{}) error
	getMemberFn             func(context.Context, int64, string) (*model.CrewMember, error)
	listMembersFn           func(context.Context, int64) ([]*model.CrewMember, error)
	listMembershipsFn       func(context.Context, string) ([]*model.CrewMember, error)
	countMembersFn          func(context.Context, int64) (int64, error)
	addMemberFn             func(context.Context, *model.CrewMember) (bool, error)
	removeMemberFn          func(context.Context, int64, string) error
	setMemberRoleFn         func(context.Context, int64, string, int8) error
	setMemberMutedFn        func(context.Context, int64, string, bool) error
	getPendingRequestFn     func(context.Context, int64, string) (*model.JoinRequest, error)
	createRequestFn         func(context.Context, *model.JoinRequest) error
	getRequestByIDFn        func(context.Context, int64) (*model.JoinRequest, error)
	reviewRequestFn         func(context.Context, int64, int8, string, time.Time) (bool, error)
	listPendingRequestsFn   func(context.Context, int64) ([]*model.JoinRequest, error)
	getCrewInviteByCodeFn   func(context.Context, string) (*model.CrewInvite, error)
	getOrCreateCrewInviteFn func(context.Context, int64, string, string) (*model.CrewInvite, error)
	incrementInviteUsesFn   func(context.Context, int64) error
}

func (f *fakeCrewRepo) CreateWithCreator(ctx context.Context, crew *model.Crew, creator *model.CrewMember) error {
	if f.createWithCreatorFn == nil {
		return errors.New("unexpected CreateWithCreator call")
	}
	return f.createWithCreatorFn(ctx, crew, creator)
}

func (f *fakeCrewRepo) GetByID(ctx context.Context, crewID int64) (*model.Crew, error) {
	if f.getByIDFn == nil {
		return nil, errors.New("unexpected GetByID call")
	}
	return f.getByIDFn(ctx, crewID)
}

func (f *fakeCrewRepo) GetByJoinCode(ctx context.Context, code string) (*model.Crew, error) {
	if f.getByJoinCodeFn == nil {
		return nil, errors.New("unexpected GetByJoinCode call")
	}
	return f.getByJoinCodeFn(ctx, code)
}

func (f *fakeCrewRepo) UpdateSettings(ctx context.Context, crewID int64, fields map[string]interface{}) error {
	if f.updateSettingsFn == nil {
		return errors.New("unexpected UpdateSettings call")
	}
	return f.updateSettingsFn(ctx, crewID, fields)
}

func (f *fakeCrewRepo) GetMember(ctx context.Context, crewID int64, userID string) (*model.CrewMember, error) {
	if f.getMemberFn == nil {
		return nil, errors.New("unexpected GetMember call")
	}
	return f.getMemberFn(ctx, crewID, userID)
}

func (f *fakeCrewRepo) ListMembers(ctx context.Context, crewID int64) ([]*model.CrewMember, error) {
	if f.listMembersFn == nil {
		return nil, errors.New("unexpected ListMembers call")
	}
	return f.listMembersFn(ctx, crewID)
}

func (f *fakeCrewRepo) ListMemberships(ctx context.Context, userID string) ([]*model.CrewMember, error) {
	if f.listMembershipsFn == nil {
		return nil, errors.New("unexpected ListMemberships call")
	}
	return f.listMembershipsFn(ctx, userID)
}

func (f *fakeCrewRepo) CountMembers(ctx context.Context, crewID int64) (int64, error) {
	if f.countMembersFn == nil {
		return 0, errors.New("unexpected CountMembers call")
	}
	return f.countMembersFn(ctx, crewID)
}

func (f *fakeCrewRepo) AddMember(ctx context.Context, member *model.CrewMember) (bool, error) {
	if f.addMemberFn == nil {
		return false, errors.New("unexpected AddMember call")
	}
	return f.addMemberFn(ctx, member)
}

func (f *fakeCrewRepo) RemoveMember(ctx context.Context, crewID int64, userID string) error {
	if f.removeMemberFn == nil {
		return errors.New("unexpected RemoveMember call")
	}
	return f.removeMemberFn(ctx, crewID, userID)
}

func (f *fakeCrewRepo) SetMemberRole(ctx context.Context, crewID int64, userID string, role int8) error {
	if f.setMemberRoleFn == nil {
		return errors.New("unexpected SetMemberRole call")
	}
	return f.setMemberRoleFn(ctx, crewID, userID, role)
}

func (f *fakeCrewRepo) SetMemberMuted(ctx context.Context, crewID int64, userID string, muted bool) error {
	if f.setMemberMutedFn == nil {
		return errors.New("unexpected SetMemberMuted call")
	}
	return f.setMemberMutedFn(ctx, crewID, userID, muted)
}

func (f *fakeCrewRepo) GetPendingRequest(ctx context.Context, crewID int64, userID string) (*model.JoinRequest, error) {
	if f.getPendingRequestFn == nil {
		return nil, errors.New("unexpected GetPendingRequest call")
	}
	return f.getPendingRequestFn(ctx, crewID, userID)
}

func (f *fakeCrewRepo) CreateRequest(ctx context.Context, req *model.JoinRequest) error {
	if f.createRequestFn == nil {
		return errors.New("unexpected CreateRequest call")
	}
	return f.createRequestFn(ctx, req)
}

func (f *fakeCrewRepo) GetRequestByID(ctx context.Context, requestID int64) (*model.JoinRequest, error) {
	if f.getRequestByIDFn == nil {
		return nil, errors.New("unexpected GetRequestByID call")
	}
	return f.getRequestByIDFn(ctx, requestID)
}

func (f *fakeCrewRepo) ReviewRequest(ctx context.Context, requestID int64, toStatus int8, reviewerID string, reviewedAt time.Time) (bool, error) {
	if f.reviewRequestFn == nil {
		return false, errors.New("unexpected ReviewRequest call")
	}
	return f.reviewRequestFn(ctx, requestID, toStatus, reviewerID, reviewedAt)
}

func (f *fakeCrewRepo) ListPendingRequests(ctx context.Context, crewID int64) ([]*model.JoinRequest, error) {
	if f.listPendingRequestsFn == nil {
		return nil, errors.New("unexpected ListPendingRequests call")
	}
	return f.listPendingRequestsFn(ctx, crewID)
}

func (f *fakeCrewRepo) GetCrewInviteByCode(ctx context.Context, code string) (*model.CrewInvite, error) {
	if f.getCrewInviteByCodeFn == nil {
		return nil, errors.New("unexpected GetCrewInviteByCode call")
	}
	return f.getCrewInviteByCodeFn(ctx, code)
}

func (f *fakeCrewRepo) GetOrCreateCrewInvite(ctx context.Context, crewID int64, inviterID, code string) (*model.CrewInvite, error) {
	if f.getOrCreateCrewInviteFn == nil {
		return nil, errors.New("unexpected GetOrCreateCrewInvite call")
	}
	return f.getOrCreateCrewInviteFn(ctx, crewID, inviterID, code)
}

func (f *fakeCrewRepo) IncrementInviteUses(ctx context.Context, inviteID int64) error {
	if f.incrementInviteUsesFn == nil {
		return errors.New("unexpected IncrementInviteUses call")
	}
	return f.incrementInviteUsesFn(ctx, inviteID)
}

// ==================== 出勤 ====================

type fakeAttRepo struct {
	upsertFn              func(context.Context, *model.Attendance) error
	deleteFn              func(context.Context, string, string) error
	getFn                 func(context.Context, string, string) (*model.Attendance, error)
	listByEventForUsersFn func(context.Context, string, []string) ([]*model.Attendance, error)
	listUpcomingFn        func(context.Context, []string, time.Time) ([]*model.Attendance, error)
}

func (f *fakeAttRepo) Upsert(ctx context.Context, att *model.Attendance) error {
	if f.upsertFn == nil {
		return errors.New("unexpected Upsert call")
	}
	return f.upsertFn(ctx, att)
}

func (f *fakeAttRepo) Delete(ctx context.Context, userID, eventID string) error {
	if f.deleteFn == nil {
		return errors.New("unexpected Delete call")
	}
	return f.deleteFn(ctx, userID, eventID)
}

func (f *fakeAttRepo) Get(ctx context.Context, userID, eventID string) (*model.Attendance, error) {
	if f.getFn == nil {
		return nil, errors.New("unexpected Get call")
	}
	return f.getFn(ctx, userID, eventID)
}

func (f *fakeAttRepo) ListByEventForUsers(ctx context.Context, eventID string, userIDs []string) ([]*model.Attendance, error) {
	if f.listByEventForUsersFn == nil {
		return nil, errors.New("unexpected ListByEventForUsers call")
	}
	return f.listByEventForUsersFn(ctx, eventID, userIDs)
}

func (f *fakeAttRepo) ListUpcomingForUsers(ctx context.Context, userIDs []string, now time.Time) ([]*model.Attendance, error) {
	if f.listUpcomingFn == nil {
		return nil, errors.New("unexpected ListUpcomingForUsers call")
	}
	return f.listUpcomingFn(ctx, userIDs, now)
}

// ==================== 通知 ====================

type fakeNotifyRepo struct {
	getPreferenceFn        func(context.Context, string) (*model.NotificationPreference, error)
	upsertPreferenceFn     func(context.Context, *model.NotificationPreference) error
	hasLogEntryFn          func(context.Context, string, string, string, string) (bool, error)
	listLoggedRecipientsFn func(context.Context, []string, string, string) (map[string]bool, error)
	insertLogFn            func(context.Context, *model.NotificationLog) error
	countSentTodayFn       func(context.Context, string, time.Time, string) (int64, error)
	incrDailyCountFn       func(context.Context, string, string)
	createReminderFn       func(context.Context, *model.EventReminder) error
	listUnsentRemindersFn  func(context.Context) ([]*model.EventReminder, error)
	markReminderSentFn     func(context.Context, int64) error
}

func (f *fakeNotifyRepo) GetPreference(ctx context.Context, userID string) (*model.NotificationPreference, error) {
	if f.getPreferenceFn == nil {
		return model.DefaultPreference(userID), nil
	}
	return f.getPreferenceFn(ctx, userID)
}

func (f *fakeNotifyRepo) UpsertPreference(ctx context.Context, pref *model.NotificationPreference) error {
	if f.upsertPreferenceFn == nil {
		return errors.New("unexpected UpsertPreference call")
	}
	return f.upsertPreferenceFn(ctx, pref)
}

func (f *fakeNotifyRepo) HasLogEntry(ctx context.Context, recipientID, notifyType, referenceID, triggeredBy string) (bool, error) {
	if f.hasLogEntryFn == nil {
		return false, nil
	}
	return f.hasLogEntryFn(ctx, recipientID, notifyType, referenceID, triggeredBy)
}

func (f *fakeNotifyRepo) ListLoggedRecipients(ctx context.Context, notifyTypes []string, referenceID, triggeredBy string) (map[string]bool, error) {
	if f.listLoggedRecipientsFn == nil {
		return map[string]bool{}, nil
	}
	return f.listLoggedRecipientsFn(ctx, notifyTypes, referenceID, triggeredBy)
}

func (f *fakeNotifyRepo) InsertLog(ctx context.Context, entry *model.NotificationLog) error {
	if f.insertLogFn == nil {
		return nil
	}
	return f.insertLogFn(ctx, entry)
}

func (f *fakeNotifyRepo) CountSentToday(ctx context.Context, recipientID string, localMidnight time.Time, localDate string) (int64, error) {
	if f.countSentTodayFn == nil {
		return 0, nil
	}
	return f.countSentTodayFn(ctx, recipientID, localMidnight, localDate)
}

func (f *fakeNotifyRepo) IncrDailyCount(ctx context.Context, recipientID, localDate string) {
	if f.incrDailyCountFn != nil {
		f.incrDailyCountFn(ctx, recipientID, localDate)
	}
}

func (f *fakeNotifyRepo) CreateReminder(ctx context.Context, reminder *model.EventReminder) error {
	if f.createReminderFn == nil {
		return errors.New("unexpected CreateReminder call")
	}
	return f.createReminderFn(ctx, reminder)
}

func (f *fakeNotifyRepo) ListUnsentReminders(ctx context.Context) ([]*model.EventReminder, error) {
	if f.listUnsentRemindersFn == nil {
		return nil, errors.New("unexpected ListUnsentReminders call")
	}
	return f.listUnsentRemindersFn(ctx)
}

func (f *fakeNotifyRepo) MarkReminderSent(ctx context.Context, reminderID int64) error {
	if f.markReminderSentFn == nil {
		return errors.New("unexpected MarkReminderSent call")
	}
	return f.markReminderSentFn(ctx, reminderID)
}

// fakeSink 记录每次出站投递，可按收件人指定失败
type fakeSink struct {
	failFor map[string]bool
	sent    []sentMessage
}

type sentMessage struct {
	userID string
	text   string
}

func (f *fakeSink) Send(_ context.Context, userID, text string) bool {
	if f.failFor[userID] {
		return false
	}
	f.sent = append(f.sent, sentMessage{userID: userID, text: text})
	return true
}
