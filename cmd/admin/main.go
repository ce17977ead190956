package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"amoura/backend/internal/config"
	"amoura/backend/internal/report"
	"amoura/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "ban":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin ban <member_id> [duration_in_hours]")
			os.Exit(1)
		}
		memberID := parseID(os.Args[2])
		var duration int
		if len(os.Args) > 3 {
			var err error
			duration, err = strconv.Atoi(os.Args[3])
			if err != nil {
				fmt.Println("Invalid duration. Please provide an integer.")
				os.Exit(1)
			}
		}
		if err := banMember(storageSvc, memberID, duration); err != nil {
			log.Fatalf("Error banning member: %v", err)
		}
		fmt.Printf("Member %d has been banned.\n", memberID)
	case "unban":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin unban <member_id>")
			os.Exit(1)
		}
		memberID := parseID(os.Args[2])
		if err := unbanMember(storageSvc, memberID); err != nil {
			log.Fatalf("Error unbanning member: %v", err)
		}
		fmt.Printf("Member %d has been unbanned.\n", memberID)
	case "confirm-report":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin confirm-report <report_id>")
			os.Exit(1)
		}
		reportID := parseID(os.Args[2])
		reports := report.NewService(storageSvc)
		if err := reports.ConfirmReport(reportID); err != nil {
			log.Fatalf("Error confirming report: %v", err)
		}
		fmt.Printf("Report %d has been confirmed.\n", reportID)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func parseID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Println("Invalid id. Please provide an integer.")
		os.Exit(1)
	}
	return id
}

func banMember(s storage.Storage, memberID int64, duration int) error {
	member, err := s.GetMemberByID(memberID)
	if err != nil {
		return err
	}
	member.IsBlocked = true
	if duration > 0 {
		member.BlockEndTime = time.Now().Add(time.Duration(duration) * time.Hour).Unix()
	}
	return s.UpdateMember(member)
}

func unbanMember(s storage.Storage, memberID int64) error {
	member, err := s.GetMemberByID(memberID)
	if err != nil {
		return err
	}
	member.IsBlocked = false
	member.BlockLevel = 0
	member.BlockEndTime = 0
	return s.UpdateMember(member)
}
