package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"flightsurety/internal/identity"
	jwttoken "flightsurety/internal/jwt_token"
	"flightsurety/internal/platform/config"
	"flightsurety/pkg/domain"
)

func keysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Derive record keys offline",
	}
	cmd.AddCommand(flightKeyCommand())
	cmd.AddCommand(insuranceKeyCommand())
	return cmd
}

func flightKeyCommand() *cobra.Command {
	var (
		airline   string
		flight    string
		departure uint64
	)
	cmd := &cobra.Command{
		Use:   "flight",
		Short: "Print the flight key of airline, flight and departure",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := domain.ParsePrincipalID(airline)
			if err != nil {
				return err
			}
			if flight == "" {
				return fmt.Errorf("--flight is required")
			}
			fmt.Fprintln(cmd.OutOrStdout(), identity.FlightKey(id, flight, departure).String())
			return nil
		},
	}
	cmd.Flags().StringVar(&airline, "airline", "", "airline address")
	cmd.Flags().StringVar(&flight, "flight", "", "flight designator")
	cmd.Flags().Uint64Var(&departure, "departure", 0, "departure time, unix seconds")
	return cmd
}

func insuranceKeyCommand() *cobra.Command {
	var (
		flightKey string
		ticket    uint64
	)
	cmd := &cobra.Command{
		Use:   "insurance",
		Short: "Print the insurance key of a flight key and ticket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := domain.ParseFlightKey(flightKey)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), identity.InsuranceKey(key, ticket).String())
			return nil
		},
	}
	cmd.Flags().StringVar(&flightKey, "flight-key", "", "flight key")
	cmd.Flags().Uint64Var(&ticket, "ticket", 0, "ticket number")
	return cmd
}

func tokenCommand() *cobra.Command {
	var (
		caller string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a caller token with the configured key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			id, err := domain.ParseCallerID(caller)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.JWT.TTL
			}
			svc := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
			token, err := svc.GenerateCallerToken(id, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&caller, "caller", "", "caller address")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to the configured ttl")
	return cmd
}
