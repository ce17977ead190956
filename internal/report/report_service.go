// Package report handles in-room member reports: reputation penalties and
// escalating bans for members who collect too many of them.
package report

import (
	"time"

	"amoura/backend/internal/config"
	"amoura/backend/internal/models"
	"amoura/backend/internal/storage"

	"go.uber.org/zap"
)

// Service handles the business logic for reports.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new report service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Weight returns the reputation penalty for a report type, 0 if unknown.
func Weight(reportType string) int {
	return config.ReportWeights[reportType]
}

// HandleReport persists a new report, applies its reputation penalty and
// checks whether the target crossed a ban threshold.
func (s *Service) HandleReport(report *models.Report) error {
	if err := s.Storage.SaveReport(report); err != nil {
		return err
	}
	if err := s.Storage.UpdateMemberReputation(report.TargetID, -Weight(report.ReportType)); err != nil {
		return err
	}
	return s.CheckForBan(report.TargetID)
}

// ConfirmReport marks operator-confirmed reports and rewards the reporter.
func (s *Service) ConfirmReport(reportID int64) error {
	report, err := s.Storage.GetReportByID(reportID)
	if err != nil {
		return err
	}
	report.Status = "confirmed"
	if err := s.Storage.SaveReport(report); err != nil {
		return err
	}
	return s.Storage.UpdateMemberReputation(report.ReporterID, config.ConfirmedReportBonus)
}

// CheckForBan bans a member whose reputation fell below the threshold or who
// collected too many reports inside the frequency window.
func (s *Service) CheckForBan(memberID int64) error {
	member, err := s.Storage.GetMemberByID(memberID)
	if err != nil {
		return err
	}

	if member.ReputationScore < config.BanThresholdReputation {
		return s.applyBan(member)
	}

	reports, err := s.Storage.GetReportsForMember(memberID, time.Now().Add(-config.BanFrequencyWindow))
	if err != nil {
		return err
	}
	if len(reports) > config.BanThresholdFrequency {
		return s.applyBan(member)
	}
	return nil
}

func (s *Service) applyBan(member *models.Member) error {
	// Повторні бани протягом місяця ескалюються
	level := 1
	if member.LastBanDate > 0 {
		since := time.Since(time.Unix(member.LastBanDate, 0))
		if since < 7*24*time.Hour {
			level = 2
		} else if since < 30*24*time.Hour {
			level = 3
		}
	}

	duration := banDuration(level)
	member.IsBlocked = true
	member.BlockLevel = level
	member.BlockEndTime = time.Now().Add(duration).Unix()
	member.LastBanDate = time.Now().Unix()

	if err := s.Storage.UpdateMember(member); err != nil {
		return err
	}
	if err := s.Storage.SetMemberBan(member.ID, duration); err != nil {
		return err
	}
	zap.L().Info("member banned",
		zap.Int64("memberId", member.ID),
		zap.Int("level", level),
		zap.Duration("duration", duration))
	return nil
}

func banDuration(level int) time.Duration {
	switch level {
	case 1:
		return config.BanLevel1Duration
	case 2:
		return config.BanLevel2Duration
	default:
		return config.BanLevel3Duration
	}
}
