package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harmonia-media/harmonia/database"
	"github.com/harmonia-media/harmonia/database/model"
	"github.com/harmonia-media/harmonia/util/random"
	"github.com/harmonia-media/harmonia/web/entity"
)

// UserService is the credential store: user records and their permission
// grants. Users are never deleted here; accounts are disabled instead.
type UserService struct {
	DB *gorm.DB
}

func NewUserService() *UserService {
	return &UserService{DB: database.GetDB()}
}

// FindByUsername looks up a user by exact (case-sensitive) username.
func (s *UserService) FindByUsername(username string) (*model.User, error) {
	var u model.User
	if err := s.DB.Where("username = ?", username).First(&u).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, entity.NotFound("The user does not exist.")
		}
		return nil, err
	}
	return &u, nil
}

// FindById looks up a user by id.
func (s *UserService) FindById(id string) (*model.User, error) {
	var u model.User
	if err := s.DB.Where("id = ?", id).First(&u).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, entity.NotFound("The user does not exist.")
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser persists a new disabled account. The device id is derived from
// the username plus a random suffix. Fails with Conflict when the username
// is already taken.
func (s *UserService) CreateUser(username, passwordHash string) (*model.User, error) {
	var count int64
	if err := s.DB.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, entity.Conflict("The user already exists.")
	}

	u := &model.User{
		Id:       uuid.NewString(),
		Username: username,
		Password: passwordHash,
		DeviceId: username + "_" + random.Seq(10),
		Enabled:  false,
	}
	if err := s.DB.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// SetEnabled flips the enabled flag of an account. Takes effect on the
// user's very next authenticated request.
func (s *UserService) SetEnabled(id string, enabled bool) (*model.User, error) {
	u, err := s.FindById(id)
	if err != nil {
		return nil, err
	}
	u.Enabled = enabled
	if err := s.DB.Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetServerPermissions returns the raw server grants of a user.
func (s *UserService) GetServerPermissions(userId string) ([]model.ServerPermission, error) {
	var perms []model.ServerPermission
	if err := s.DB.Where("user_id = ?", userId).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// GetServerFolderPermissions returns the raw server-folder grants of a user.
func (s *UserService) GetServerFolderPermissions(userId string) ([]model.ServerFolderPermission, error) {
	var perms []model.ServerFolderPermission
	if err := s.DB.Where("user_id = ?", userId).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// GrantServerPermission records a server grant for a user.
func (s *UserService) GrantServerPermission(userId, serverId string) (*model.ServerPermission, error) {
	p := &model.ServerPermission{Id: uuid.NewString(), UserId: userId, ServerId: serverId}
	if err := s.DB.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GrantServerFolderPermission records a server-folder grant for a user.
func (s *UserService) GrantServerFolderPermission(userId, serverFolderId string) (*model.ServerFolderPermission, error) {
	p := &model.ServerFolderPermission{Id: uuid.NewString(), UserId: userId, ServerFolderId: serverFolderId}
	if err := s.DB.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// FlattenServerPermissions reduces server grants to a duplicate-free set of
// server ids for fast membership checks.
func FlattenServerPermissions(perms []model.ServerPermission) []string {
	seen := make(map[string]struct{}, len(perms))
	flat := make([]string, 0, len(perms))
	for _, p := range perms {
		if _, ok := seen[p.ServerId]; ok {
			continue
		}
		seen[p.ServerId] = struct{}{}
		flat = append(flat, p.ServerId)
	}
	return flat
}

// FlattenServerFolderPermissions reduces folder grants to a duplicate-free
// set of server-folder ids.
func FlattenServerFolderPermissions(perms []model.ServerFolderPermission) []string {
	seen := make(map[string]struct{}, len(perms))
	flat := make([]string, 0, len(perms))
	for _, p := range perms {
		if _, ok := seen[p.ServerFolderId]; ok {
			continue
		}
		seen[p.ServerFolderId] = struct{}{}
		flat = append(flat, p.ServerFolderId)
	}
	return flat
}
