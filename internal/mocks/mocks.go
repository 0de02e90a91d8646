package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (models.SystemUser, error) {
	args := m.Called(ctx, email)
	var user models.SystemUser
	if val := args.Get(0); val != nil {
		user = val.(models.SystemUser)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, id int) (models.SystemUser, error) {
	args := m.Called(ctx, id)
	var user models.SystemUser
	if val := args.Get(0); val != nil {
		user = val.(models.SystemUser)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) CreateAdmin(ctx context.Context, email, passwordHash string) (models.SystemUser, error) {
	args := m.Called(ctx, email, passwordHash)
	var user models.SystemUser
	if val := args.Get(0); val != nil {
		user = val.(models.SystemUser)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateAdmin(ctx context.Context, id int, email string, passwordHash *string) error {
	args := m.Called(ctx, id, email, passwordHash)
	return args.Error(0)
}

func (m *UserRepositoryMock) SetActive(ctx context.Context, id int, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *UserRepositoryMock) ListAdmins(ctx context.Context) ([]models.SystemUser, error) {
	args := m.Called(ctx)
	var users []models.SystemUser
	if val := args.Get(0); val != nil {
		users = val.([]models.SystemUser)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) ListAgentsWithDepartments(ctx context.Context) ([]models.AgentSummary, error) {
	args := m.Called(ctx)
	var agents []models.AgentSummary
	if val := args.Get(0); val != nil {
		agents = val.([]models.AgentSummary)
	}
	return agents, args.Error(1)
}

func (m *UserRepositoryMock) CreateAgent(ctx context.Context, email, passwordHash string, deptIDs []int) (int, error) {
	args := m.Called(ctx, email, passwordHash, deptIDs)
	return args.Int(0), args.Error(1)
}

func (m *UserRepositoryMock) UpdateAgent(ctx context.Context, id int, email string, passwordHash *string, active bool, deptIDs []int) error {
	args := m.Called(ctx, id, email, passwordHash, active, deptIDs)
	return args.Error(0)
}

func (m *UserRepositoryMock) ChangeRole(ctx context.Context, id int, roleID int) error {
	args := m.Called(ctx, id, roleID)
	return args.Error(0)
}

func (m *UserRepositoryMock) UpdateEmail(ctx context.Context, id int, email string) error {
	args := m.Called(ctx, id, email)
	return args.Error(0)
}

type ClientRepositoryMock struct {
	mock.Mock
}

func (m *ClientRepositoryMock) GetByNumber(ctx context.Context, countryCode, number string) (models.Client, error) {
	args := m.Called(ctx, countryCode, number)
	var client models.Client
	if val := args.Get(0); val != nil {
		client = val.(models.Client)
	}
	return client, args.Error(1)
}

func (m *ClientRepositoryMock) GetByID(ctx context.Context, id int) (models.Client, error) {
	args := m.Called(ctx, id)
	var client models.Client
	if val := args.Get(0); val != nil {
		client = val.(models.Client)
	}
	return client, args.Error(1)
}

func (m *ClientRepositoryMock) Create(ctx context.Context, countryCode, number, passwordHash string) (models.Client, error) {
	args := m.Called(ctx, countryCode, number, passwordHash)
	var client models.Client
	if val := args.Get(0); val != nil {
		client = val.(models.Client)
	}
	return client, args.Error(1)
}

type ChatGroupRepositoryMock struct {
	mock.Mock
}

func (m *ChatGroupRepositoryMock) GetByID(ctx context.Context, id int) (models.ChatGroup, error) {
	args := m.Called(ctx, id)
	var group models.ChatGroup
	if val := args.Get(0); val != nil {
		group = val.(models.ChatGroup)
	}
	return group, args.Error(1)
}

func (m *ChatGroupRepositoryMock) CreateOrGetForClient(ctx context.Context, clientID int) (models.ChatGroup, error) {
	args := m.Called(ctx, clientID)
	var group models.ChatGroup
	if val := args.Get(0); val != nil {
		group = val.(models.ChatGroup)
	}
	return group, args.Error(1)
}

func (m *ChatGroupRepositoryMock) IDsForClient(ctx context.Context, clientID int) ([]int, error) {
	args := m.Called(ctx, clientID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *ChatGroupRepositoryMock) ListWithClients(ctx context.Context) ([]models.GroupClientRow, error) {
	args := m.Called(ctx)
	var rows []models.GroupClientRow
	if val := args.Get(0); val != nil {
		rows = val.([]models.GroupClientRow)
	}
	return rows, args.Error(1)
}

func (m *ChatGroupRepositoryMock) ListUnassigned(ctx context.Context) ([]models.GroupClientRow, error) {
	args := m.Called(ctx)
	var rows []models.GroupClientRow
	if val := args.Get(0); val != nil {
		rows = val.([]models.GroupClientRow)
	}
	return rows, args.Error(1)
}

func (m *ChatGroupRepositoryMock) AssignDepartment(ctx context.Context, chatGroupID, deptID int) (models.ChatMessage, error) {
	args := m.Called(ctx, chatGroupID, deptID)
	var msg models.ChatMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.ChatMessage)
	}
	return msg, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, chatGroupID int, sender repositories.SenderRef, body string) (models.ChatMessage, error) {
	args := m.Called(ctx, chatGroupID, sender, body)
	var msg models.ChatMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.ChatMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListByGroup(ctx context.Context, chatGroupID int, before *time.Time, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, chatGroupID, before, limit)
	var msgs []models.ChatMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ChatMessage)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) ListAscending(ctx context.Context, chatGroupID int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, chatGroupID)
	var msgs []models.ChatMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ChatMessage)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) LatestAgentProfile(ctx context.Context, chatGroupID int) (*models.Profile, error) {
	args := m.Called(ctx, chatGroupID)
	var prof *models.Profile
	if val := args.Get(0); val != nil {
		prof = val.(*models.Profile)
	}
	return prof, args.Error(1)
}

type DepartmentRepositoryMock struct {
	mock.Mock
}

func (m *DepartmentRepositoryMock) List(ctx context.Context) ([]models.Department, error) {
	args := m.Called(ctx)
	var depts []models.Department
	if val := args.Get(0); val != nil {
		depts = val.([]models.Department)
	}
	return depts, args.Error(1)
}

func (m *DepartmentRepositoryMock) GetByName(ctx context.Context, name string) (models.Department, error) {
	args := m.Called(ctx, name)
	var dept models.Department
	if val := args.Get(0); val != nil {
		dept = val.(models.Department)
	}
	return dept, args.Error(1)
}

func (m *DepartmentRepositoryMock) Create(ctx context.Context, name string) (models.Department, error) {
	args := m.Called(ctx, name)
	var dept models.Department
	if val := args.Get(0); val != nil {
		dept = val.(models.Department)
	}
	return dept, args.Error(1)
}

func (m *DepartmentRepositoryMock) Update(ctx context.Context, id int, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *DepartmentRepositoryMock) SetActive(ctx context.Context, id int, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

type MacroRepositoryMock struct {
	mock.Mock
}

func (m *MacroRepositoryMock) ListByRole(ctx context.Context, roleID int) ([]models.MacroWithDepartment, error) {
	args := m.Called(ctx, roleID)
	var macros []models.MacroWithDepartment
	if val := args.Get(0); val != nil {
		macros = val.([]models.MacroWithDepartment)
	}
	return macros, args.Error(1)
}

func (m *MacroRepositoryMock) Create(ctx context.Context, message string, deptID *int, roleID int) (models.CannedMessage, error) {
	args := m.Called(ctx, message, deptID, roleID)
	var macro models.CannedMessage
	if val := args.Get(0); val != nil {
		macro = val.(models.CannedMessage)
	}
	return macro, args.Error(1)
}

func (m *MacroRepositoryMock) Update(ctx context.Context, id int, message string, deptID *int) error {
	args := m.Called(ctx, id, message, deptID)
	return args.Error(0)
}

func (m *MacroRepositoryMock) SetActive(ctx context.Context, id int, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

type AutoReplyRepositoryMock struct {
	mock.Mock
}

func (m *AutoReplyRepositoryMock) List(ctx context.Context) ([]models.AutoReply, error) {
	args := m.Called(ctx)
	var replies []models.AutoReply
	if val := args.Get(0); val != nil {
		replies = val.([]models.AutoReply)
	}
	return replies, args.Error(1)
}

func (m *AutoReplyRepositoryMock) Create(ctx context.Context, message string, deptID *int) (models.AutoReply, error) {
	args := m.Called(ctx, message, deptID)
	var reply models.AutoReply
	if val := args.Get(0); val != nil {
		reply = val.(models.AutoReply)
	}
	return reply, args.Error(1)
}

func (m *AutoReplyRepositoryMock) Update(ctx context.Context, id int, message string, deptID *int) error {
	args := m.Called(ctx, id, message, deptID)
	return args.Error(0)
}

func (m *AutoReplyRepositoryMock) SetActive(ctx context.Context, id int, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) GetByUserID(ctx context.Context, sysUserID int) (models.Profile, error) {
	args := m.Called(ctx, sysUserID)
	var prof models.Profile
	if val := args.Get(0); val != nil {
		prof = val.(models.Profile)
	}
	return prof, args.Error(1)
}

func (m *ProfileRepositoryMock) UpsertForUser(ctx context.Context, sysUserID int, p models.Profile) (models.Profile, error) {
	args := m.Called(ctx, sysUserID, p)
	var prof models.Profile
	if val := args.Get(0); val != nil {
		prof = val.(models.Profile)
	}
	return prof, args.Error(1)
}

func (m *ProfileRepositoryMock) EnsureForUser(ctx context.Context, sysUserID int) (int, error) {
	args := m.Called(ctx, sysUserID)
	return args.Int(0), args.Error(1)
}

func (m *ProfileRepositoryMock) CurrentOrLatestImage(ctx context.Context, profID int) (*models.Image, error) {
	args := m.Called(ctx, profID)
	var img *models.Image
	if val := args.Get(0); val != nil {
		img = val.(*models.Image)
	}
	return img, args.Error(1)
}

func (m *ProfileRepositoryMock) ListCurrentImages(ctx context.Context, profIDs []int) (map[int]string, error) {
	args := m.Called(ctx, profIDs)
	var out map[int]string
	if val := args.Get(0); val != nil {
		out = val.(map[int]string)
	}
	return out, args.Error(1)
}

func (m *ProfileRepositoryMock) ListLatestImages(ctx context.Context, profIDs []int) (map[int]string, error) {
	args := m.Called(ctx, profIDs)
	var out map[int]string
	if val := args.Get(0); val != nil {
		out = val.(map[int]string)
	}
	return out, args.Error(1)
}

func (m *ProfileRepositoryMock) SetCurrentImage(ctx context.Context, profID int, location string) (models.Image, error) {
	args := m.Called(ctx, profID, location)
	var img models.Image
	if val := args.Get(0); val != nil {
		img = val.(models.Image)
	}
	return img, args.Error(1)
}
