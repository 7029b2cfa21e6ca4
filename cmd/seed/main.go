// seed inserts development sample data for local testing and prints access tokens for the
// sample users. Idempotent: skips inserts when the sample organization already has a business.
// Tokens are printed only when JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are set.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	bizdomain "zeno-access/internal/businessuser/domain"
	bizrepo "zeno-access/internal/businessuser/repository"
	"zeno-access/internal/config"
	"zeno-access/internal/db"
	policydomain "zeno-access/internal/policy/domain"
	policyrepo "zeno-access/internal/policy/repository"
	"zeno-access/internal/role/domain"
	"zeno-access/internal/security"
)

// devPolicy stops managers from editing the business. Seeded disabled.
const devPolicy = `package zeno.business_access

deny if {
	input.business_role == "manager"
	input.action == "edit-business"
}
`

const (
	devOrgID        int64 = 1
	devBusinessName       = "Dev Business"
)

type devUser struct {
	id           int64
	orgRole      domain.OrgRole
	businessRole domain.BusinessRole
}

var devUsers = []devUser{
	{id: 1, orgRole: domain.OrgRoleOwner, businessRole: domain.BusinessRoleOwner},
	{id: 2, orgRole: domain.OrgRoleManager, businessRole: domain.BusinessRoleManager},
	{id: 3, orgRole: domain.OrgRoleStaff, businessRole: domain.BusinessRoleStaff},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.PingTimeout())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	assignments := bizrepo.NewPostgresRepository(conn)
	existing, err := assignments.ListBusinesses(ctx, devOrgID)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("Seed already applied (org %d has business %d). Skipping inserts.", devOrgID, existing[0].ID)
	} else {
		business := &bizdomain.Business{OrgID: devOrgID, Name: devBusinessName}
		if _, err := assignments.CreateBusiness(ctx, business, devUsers[0].id); err != nil {
			log.Fatalf("create business: %v", err)
		}
		log.Printf("Created business %d in org %d", business.ID, devOrgID)
		for _, u := range devUsers[1:] {
			a := &bizdomain.Assignment{BusinessID: business.ID, AdminUserID: u.id, Role: u.businessRole}
			if err := assignments.Create(ctx, a); err != nil {
				log.Fatalf("create assignment for user %d: %v", u.id, err)
			}
		}
		policies := policyrepo.NewPostgresRepository(conn)
		if err := policies.Create(ctx, &policydomain.Policy{
			ID:        uuid.New().String(),
			OrgID:     devOrgID,
			Rules:     devPolicy,
			Enabled:   false,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			log.Fatalf("create policy: %v", err)
		}
		log.Println("Seed completed successfully.")
	}

	if cfg.JWTPrivateKey == "" || cfg.JWTPublicKey == "" {
		log.Println("JWT keys not set; skipping dev tokens")
		return
	}
	signer, pub, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt keys: %v", err)
	}
	tokens := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	for _, u := range devUsers {
		token, _, expiresAt, err := tokens.IssueAccess(security.Identity{
			SessionID: uuid.New().String(),
			UserID:    u.id,
			OrgID:     devOrgID,
			OrgRole:   u.orgRole,
		})
		if err != nil {
			log.Fatalf("issue token for user %d: %v", u.id, err)
		}
		fmt.Printf("user %d (%s, expires %s):\n%s\n\n", u.id, u.orgRole, expiresAt.Format(time.RFC3339), token)
	}
}
