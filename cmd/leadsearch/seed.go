package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"leadsearch/internal/domain"
	"leadsearch/internal/phone"
	"leadsearch/internal/storage"
)

// seedLead is the YAML shape of one lead in a seed file.
type seedLead struct {
	OwnerID         int64  `yaml:"owner_id"`
	FirstName       string `yaml:"fname"`
	LastName        string `yaml:"lname"`
	FullName        string `yaml:"full_name"`
	MainPhoneArea   string `yaml:"main_phone_area"`
	MainPhone       string `yaml:"main_phone"`
	SecondPhoneArea string `yaml:"second_phone_area"`
	SecondPhone     string `yaml:"second_phone"`
	Email           string `yaml:"email"`
	Sex             string `yaml:"sex"`
	City            string `yaml:"city"`
	State           string `yaml:"state"`
	CurrentStatus   string `yaml:"current_status"`
	Office          string `yaml:"office"`
	CRMID           string `yaml:"crm_id"`
	MarketingID     string `yaml:"mkt_id"`
	CompanyName     string `yaml:"company_name"`
	RealDate        string `yaml:"real_date"`
}

func (s seedLead) lead() (domain.Lead, error) {
	l := domain.Lead{
		OwnerID:         s.OwnerID,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		FullName:        s.FullName,
		MainPhoneArea:   s.MainPhoneArea,
		MainPhone:       phone.Canonical(s.MainPhone),
		SecondPhoneArea: s.SecondPhoneArea,
		SecondPhone:     phone.Canonical(s.SecondPhone),
		Email:           s.Email,
		Sex:             s.Sex,
		City:            s.City,
		State:           s.State,
		CurrentStatus:   s.CurrentStatus,
		Office:          s.Office,
		CRMID:           s.CRMID,
		MarketingID:     s.MarketingID,
		CompanyName:     s.CompanyName,
		RealDate:        time.Now().UTC(),
	}
	if s.OwnerID <= 0 {
		return l, fmt.Errorf("lead %q: owner_id must be positive", s.FirstName+" "+s.LastName)
	}
	if s.RealDate != "" {
		d, err := time.Parse(time.DateOnly, s.RealDate)
		if err != nil {
			return l, fmt.Errorf("lead %q: real_date: %w", s.FirstName+" "+s.LastName, err)
		}
		l.RealDate = d
	}
	return l, nil
}

// readSeedFile parses a YAML file holding a top-level "leads" list.
func readSeedFile(path string) ([]domain.Lead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Leads []seedLead `yaml:"leads"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	leads := make([]domain.Lead, 0, len(doc.Leads))
	for _, s := range doc.Leads {
		l, err := s.lead()
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, nil
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Load leads from a YAML file into the configured store",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return errors.New("seed expects exactly one FILE argument")
			}
			leads, err := readSeedFile(c.Args().First())
			if err != nil {
				return err
			}

			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}
			be, err := openBackend(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = be.Close() }()

			w, ok := be.store.(storage.LeadWriter)
			if !ok || !be.durable {
				return errors.New("seeding needs a sqlite or postgres build")
			}
			inserted, err := w.InsertLeads(ctx, leads...)
			if err != nil {
				return fmt.Errorf("inserting leads: %w", err)
			}
			logger.Info("seeded leads", "count", len(inserted))
			return nil
		},
	}
}
