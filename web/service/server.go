package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harmonia-media/harmonia/database"
	"github.com/harmonia-media/harmonia/database/model"
	"github.com/harmonia-media/harmonia/web/entity"
)

// ServerService manages the remote music servers and their folders. These
// are the grant targets of the permission tables.
type ServerService struct {
	DB *gorm.DB
}

func NewServerService() *ServerService {
	return &ServerService{DB: database.GetDB()}
}

func (s *ServerService) GetServer(id string) (*model.Server, error) {
	var server model.Server
	if err := s.DB.Where("id = ?", id).First(&server).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, entity.NotFound("The server does not exist.")
		}
		return nil, err
	}
	return &server, nil
}

// GetServers returns the servers with the given ids. An empty id set
// returns an empty slice, not all servers.
func (s *ServerService) GetServers(ids []string) ([]model.Server, error) {
	servers := make([]model.Server, 0, len(ids))
	if len(ids) == 0 {
		return servers, nil
	}
	if err := s.DB.Where("id IN ?", ids).Order("name ASC").Find(&servers).Error; err != nil {
		return nil, err
	}
	return servers, nil
}

func (s *ServerService) GetAllServers() ([]model.Server, error) {
	var servers []model.Server
	if err := s.DB.Order("name ASC").Find(&servers).Error; err != nil {
		return nil, err
	}
	return servers, nil
}

func (s *ServerService) AddServer(name, url string) (*model.Server, error) {
	server := &model.Server{Id: uuid.NewString(), Name: name, Url: url}
	if err := s.DB.Create(server).Error; err != nil {
		return nil, err
	}
	return server, nil
}

func (s *ServerService) AddServerFolder(serverId, name string) (*model.ServerFolder, error) {
	if _, err := s.GetServer(serverId); err != nil {
		return nil, err
	}
	folder := &model.ServerFolder{Id: uuid.NewString(), ServerId: serverId, Name: name}
	if err := s.DB.Create(folder).Error; err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *ServerService) GetServerFolders(serverId string) ([]model.ServerFolder, error) {
	var folders []model.ServerFolder
	if err := s.DB.Where("server_id = ?", serverId).Order("name ASC").Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}
