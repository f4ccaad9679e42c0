package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medlembra/medlembra/internal/models"
)

const (
	familyStatusActive   = "ativo"
	familyStatusPending  = "pendente"
	defaultRelationship  = "Não especificado"
	maxRelationshipChars = 60
)

type FamilyRepository interface {
	ListAcceptedForUser(ctx context.Context, userID string) ([]models.FamilyConnection, error)
	ListPendingForRequested(ctx context.Context, userID string) ([]models.FamilyConnection, error)
	FindByID(ctx context.Context, connectionID string) (models.FamilyConnection, bool, error)
	FindBetween(ctx context.Context, firstUserID string, secondUserID string) (models.FamilyConnection, bool, error)
	Create(ctx context.Context, connection *models.FamilyConnection) error
	UpdateByID(ctx context.Context, connectionID string, updates map[string]any) error
	DeleteByID(ctx context.Context, connectionID string) error
}

type FamilyUserReader interface {
	FindByNormalizedEmail(ctx context.Context, email string) (models.User, bool, error)
}

type FamilyMedicationReader interface {
	ListActiveByUser(ctx context.Context, userID string) ([]models.Medication, error)
}

type FamilyStatsReader interface {
	Logs(ctx context.Context, userID string, days int, status string) ([]models.MedicationLog, error)
	Summary(ctx context.Context, userID string, days int) (AdherenceSummary, error)
}

// FamilyMember is the connection as seen by one participant.
type FamilyMember struct {
	ID           string    `json:"id"`
	FamiliarID   string    `json:"familiarId"`
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	Picture      *string   `json:"picture"`
	Age          *int      `json:"age"`
	Relationship string    `json:"parentesco"`
	Status       string    `json:"status,omitempty"`
	Permissions  string    `json:"permissoes"`
	Contact      string    `json:"contato,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type InviteInput struct {
	Email        string
	Relationship string
	Permissions  string
}

type ConnectionUpdate struct {
	Relationship *string
	Permissions  *string
}

type FamilyService struct {
	connections FamilyRepository
	users       FamilyUserReader
	medications FamilyMedicationReader
	stats       FamilyStatsReader
}

func NewFamilyService(connections FamilyRepository, users FamilyUserReader, medications FamilyMedicationReader, stats FamilyStatsReader) *FamilyService {
	return &FamilyService{
		connections: connections,
		users:       users,
		medications: medications,
		stats:       stats,
	}
}

func NormalizePermissions(raw string) (string, error) {
	switch value := strings.ToLower(strings.TrimSpace(raw)); value {
	case "":
		return models.PermissionView, nil
	case models.PermissionView, models.PermissionManage:
		return value, nil
	default:
		return "", fmt.Errorf("%w: unknown permissions %q", ErrInvalidInput, raw)
	}
}

func normalizeRelationship(raw string) (*string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	if len([]rune(value)) > maxRelationshipChars {
		return nil, fmt.Errorf("%w: relationship is too long", ErrInvalidInput)
	}
	return &value, nil
}

func memberView(connection models.FamilyConnection, familiar *models.User, status string, withContact bool) FamilyMember {
	member := FamilyMember{
		ID:           connection.ID,
		Relationship: defaultRelationship,
		Status:       status,
		Permissions:  connection.Permissions,
		CreatedAt:    connection.CreatedAt,
	}
	if connection.Relationship != nil && *connection.Relationship != "" {
		member.Relationship = *connection.Relationship
	}
	if familiar != nil {
		member.FamiliarID = familiar.ID
		member.Name = familiar.Name
		member.Email = familiar.Email
		member.Picture = familiar.Picture
		member.Age = familiar.Age
		if withContact {
			member.Contact = familiar.Email
		}
	}
	return member
}

func (service *FamilyService) ListConnected(ctx context.Context, userID string) ([]FamilyMember, error) {
	connections, err := service.connections.ListAcceptedForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load family: %w", err)
	}
	members := make([]FamilyMember, 0, len(connections))
	for _, connection := range connections {
		members = append(members, memberView(connection, connection.Other(userID), familyStatusActive, true))
	}
	return members, nil
}

func (service *FamilyService) Invite(ctx context.Context, requester models.User, input InviteInput) (FamilyMember, error) {
	email := NormalizeAuthEmail(input.Email)
	if email == "" {
		return FamilyMember{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	permissions, err := NormalizePermissions(input.Permissions)
	if err != nil {
		return FamilyMember{}, err
	}
	relationship, err := normalizeRelationship(input.Relationship)
	if err != nil {
		return FamilyMember{}, err
	}

	requested, found, err := service.users.FindByNormalizedEmail(ctx, email)
	if err != nil {
		return FamilyMember{}, fmt.Errorf("load invited user: %w", err)
	}
	if !found {
		return FamilyMember{}, ErrUserNotFound
	}
	if requested.ID == requester.ID {
		return FamilyMember{}, ErrSelfConnection
	}

	if _, exists, err := service.connections.FindBetween(ctx, requester.ID, requested.ID); err != nil {
		return FamilyMember{}, fmt.Errorf("check connection: %w", err)
	} else if exists {
		return FamilyMember{}, ErrConnectionExists
	}

	connection := models.FamilyConnection{
		RequesterID:  requester.ID,
		RequestedID:  requested.ID,
		Status:       models.ConnectionPending,
		Relationship: relationship,
		Permissions:  permissions,
	}
	if err := service.connections.Create(ctx, &connection); err != nil {
		// A concurrent invite in either direction trips the pair index.
		if _, exists, findErr := service.connections.FindBetween(ctx, requester.ID, requested.ID); findErr == nil && exists {
			return FamilyMember{}, ErrConnectionExists
		}
		return FamilyMember{}, fmt.Errorf("create connection: %w", err)
	}
	return memberView(connection, &requested, familyStatusPending, true), nil
}

// loadParticipantConnection returns ErrConnectionNotFound for strangers too,
// so connection ids of other users are not disclosed.
func (service *FamilyService) loadParticipantConnection(ctx context.Context, userID string, connectionID string) (models.FamilyConnection, error) {
	connection, found, err := service.connections.FindByID(ctx, connectionID)
	if err != nil {
		return models.FamilyConnection{}, fmt.Errorf("load connection: %w", err)
	}
	if !found || !connection.Involves(userID) {
		return models.FamilyConnection{}, ErrConnectionNotFound
	}
	return connection, nil
}

func (service *FamilyService) UpdateConnection(ctx context.Context, userID string, connectionID string, update ConnectionUpdate) (models.FamilyConnection, error) {
	connection, err := service.loadParticipantConnection(ctx, userID, connectionID)
	if err != nil {
		return models.FamilyConnection{}, err
	}

	updates := make(map[string]any)
	if update.Permissions != nil {
		permissions, err := NormalizePermissions(*update.Permissions)
		if err != nil {
			return models.FamilyConnection{}, err
		}
		updates["permissions"] = permissions
	}
	if update.Relationship != nil {
		relationship, err := normalizeRelationship(*update.Relationship)
		if err != nil {
			return models.FamilyConnection{}, err
		}
		updates["relationship"] = relationship
	}
	if len(updates) == 0 {
		return connection, nil
	}

	if err := service.connections.UpdateByID(ctx, connection.ID, updates); err != nil {
		return models.FamilyConnection{}, fmt.Errorf("update connection: %w", err)
	}
	return service.loadParticipantConnection(ctx, userID, connectionID)
}

func (service *FamilyService) RemoveConnection(ctx context.Context, userID string, connectionID string) error {
	connection, err := service.loadParticipantConnection(ctx, userID, connectionID)
	if err != nil {
		return err
	}
	if err := service.connections.DeleteByID(ctx, connection.ID); err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	return nil
}

func (service *FamilyService) ListPendingInvites(ctx context.Context, userID string) ([]FamilyMember, error) {
	invites, err := service.connections.ListPendingForRequested(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load invites: %w", err)
	}
	members := make([]FamilyMember, 0, len(invites))
	for _, invite := range invites {
		members = append(members, memberView(invite, invite.Requester, "", false))
	}
	return members, nil
}

func (service *FamilyService) loadPendingInvite(ctx context.Context, userID string, inviteID string) (models.FamilyConnection, error) {
	invite, found, err := service.connections.FindByID(ctx, inviteID)
	if err != nil {
		return models.FamilyConnection{}, fmt.Errorf("load invite: %w", err)
	}
	if !found || invite.RequestedID != userID || invite.Status != models.ConnectionPending {
		return models.FamilyConnection{}, ErrInviteNotFound
	}
	return invite, nil
}

func (service *FamilyService) AcceptInvite(ctx context.Context, userID string, inviteID string) (FamilyMember, error) {
	invite, err := service.loadPendingInvite(ctx, userID, inviteID)
	if err != nil {
		return FamilyMember{}, err
	}
	if err := service.connections.UpdateByID(ctx, invite.ID, map[string]any{"status": models.ConnectionAccepted}); err != nil {
		return FamilyMember{}, fmt.Errorf("accept invite: %w", err)
	}
	invite.Status = models.ConnectionAccepted
	return memberView(invite, invite.Requester, familyStatusActive, true), nil
}

// RejectInvite deletes the invite so the requester may invite again later.
func (service *FamilyService) RejectInvite(ctx context.Context, userID string, inviteID string) error {
	invite, err := service.loadPendingInvite(ctx, userID, inviteID)
	if err != nil {
		return err
	}
	if err := service.connections.DeleteByID(ctx, invite.ID); err != nil {
		return fmt.Errorf("reject invite: %w", err)
	}
	return nil
}

// RequireAccepted guards every read of another member's data.
func (service *FamilyService) RequireAccepted(ctx context.Context, viewerID string, familiarID string) error {
	if viewerID == familiarID {
		return ErrNoConnection
	}
	connection, found, err := service.connections.FindBetween(ctx, viewerID, familiarID)
	if err != nil {
		return fmt.Errorf("check connection: %w", err)
	}
	if !found || connection.Status != models.ConnectionAccepted {
		return ErrNoConnection
	}
	return nil
}

func (service *FamilyService) MedicationsOf(ctx context.Context, viewerID string, familiarID string) ([]models.Medication, error) {
	if err := service.RequireAccepted(ctx, viewerID, familiarID); err != nil {
		return nil, err
	}
	medications, err := service.medications.ListActiveByUser(ctx, familiarID)
	if err != nil {
		return nil, fmt.Errorf("load family medications: %w", err)
	}
	for index := range medications {
		enabled := make([]models.Reminder, 0, len(medications[index].Reminders))
		for _, reminder := range medications[index].Reminders {
			if reminder.Enabled {
				enabled = append(enabled, reminder)
			}
		}
		medications[index].Reminders = enabled
	}
	return medications, nil
}

func (service *FamilyService) LogsOf(ctx context.Context, viewerID string, familiarID string, days int, status string) ([]models.MedicationLog, error) {
	if err := service.RequireAccepted(ctx, viewerID, familiarID); err != nil {
		return nil, err
	}
	return service.stats.Logs(ctx, familiarID, days, status)
}

func (service *FamilyService) StatsOf(ctx context.Context, viewerID string, familiarID string, days int) (AdherenceSummary, error) {
	if err := service.RequireAccepted(ctx, viewerID, familiarID); err != nil {
		return AdherenceSummary{}, err
	}
	return service.stats.Summary(ctx, familiarID, days)
}
