package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/taskcore/task-management/internal/auth"
	"github.com/taskcore/task-management/internal/permission"
	permissiondb "github.com/taskcore/task-management/internal/permission/postgres"
	"github.com/taskcore/task-management/internal/role"
	roledb "github.com/taskcore/task-management/internal/role/postgres"
	"github.com/taskcore/task-management/internal/user"
	userdb "github.com/taskcore/task-management/internal/user/postgres"
	"github.com/taskcore/task-management/internal/workflow"
	workflowdb "github.com/taskcore/task-management/internal/workflow/postgres"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the permission catalog, system roles, workflow graph and admin user",
	Long: `Provision the database with the fixed permission catalog, the system
roles, the default status graph with its transitions, and a bootstrap
super admin account. Safe to run repeatedly: everything is upserted.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if err := runSeed(gormDB, cfg.Security.BCryptCost); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		fmt.Println("Seed completed")
	},
}

func runSeed(gormDB *gorm.DB, bcryptCost int) error {
	permRepo := permissiondb.NewPermissionRepository(gormDB)
	roleRepo := roledb.NewRoleRepository(gormDB)
	statusRepo := workflowdb.NewStatusRepository(gormDB)
	transitionRepo := workflowdb.NewTransitionRepository(gormDB)
	userRepo := userdb.NewUserRepository(gormDB)

	// Permission catalog, keyed on (resource, action).
	for _, def := range permission.Catalog {
		p := &permission.Permission{
			Resource:    def.Resource,
			Action:      def.Action,
			Description: def.Description,
			Group:       def.Group,
		}
		if err := permRepo.Upsert(p); err != nil {
			return fmt.Errorf("upsert permission %s:%s: %w", def.Resource, def.Action, err)
		}
	}
	fmt.Printf("Seeded %d permissions\n", len(permission.Catalog))

	all, err := permRepo.GetAll()
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	byString := make(map[string]permission.Permission, len(all))
	for _, p := range all {
		byString[p.PermString()] = *p
	}

	// System roles, keyed on slug.
	for _, def := range role.SystemRoleDefs {
		perms := make([]permission.Permission, 0, len(def.Permissions))
		for _, s := range def.Permissions {
			p, ok := byString[s]
			if !ok {
				return fmt.Errorf("system role %s references unknown permission %s", def.Slug, s)
			}
			perms = append(perms, p)
		}
		seeded := &role.Role{
			Name:        def.Name,
			Slug:        def.Slug,
			Description: def.Description,
			IsSystem:    true,
			IsActive:    true,
		}
		if err := roleRepo.UpsertBySlug(seeded, perms); err != nil {
			return fmt.Errorf("upsert role %s: %w", def.Slug, err)
		}
	}
	fmt.Printf("Seeded %d system roles\n", len(role.SystemRoleDefs))

	// Status graph, keyed on slug.
	statusBySlug := make(map[string]*workflow.WorkflowStatus, len(workflow.DefaultStatusDefs))
	for _, def := range workflow.DefaultStatusDefs {
		s := &workflow.WorkflowStatus{
			Name:        def.Name,
			Slug:        workflow.StatusSlugFor(def.Name),
			Description: def.Description,
			Color:       def.Color,
			Order:       def.Order,
			IsDefault:   def.IsDefault,
			IsFinal:     def.IsFinal,
			IsActive:    true,
		}
		if err := statusRepo.UpsertBySlug(s); err != nil {
			return fmt.Errorf("upsert status %s: %w", s.Slug, err)
		}
		statusBySlug[s.Slug] = s
	}
	fmt.Printf("Seeded %d statuses\n", len(workflow.DefaultStatusDefs))

	// Ensure exactly one default when the table was empty before.
	if def, err := statusRepo.GetDefault(); err != nil {
		return fmt.Errorf("check default status: %w", err)
	} else if def == nil {
		first := statusBySlug[workflow.StatusSlugFor(workflow.DefaultStatusDefs[0].Name)]
		first.IsDefault = true
		if err := statusRepo.Update(first); err != nil {
			return fmt.Errorf("set default status: %w", err)
		}
	}

	// Transition edges. Existing pairs are left untouched so operator
	// reconfiguration survives reseeding.
	created := 0
	for _, def := range workflow.DefaultTransitionDefs {
		from, ok := statusBySlug[def.FromSlug]
		if !ok {
			return fmt.Errorf("transition references unknown status %s", def.FromSlug)
		}
		to, ok := statusBySlug[def.ToSlug]
		if !ok {
			return fmt.Errorf("transition references unknown status %s", def.ToSlug)
		}

		exists, err := transitionRepo.EdgeExists(from.ID, to.ID)
		if err != nil {
			return fmt.Errorf("check transition %s -> %s: %w", def.FromSlug, def.ToSlug, err)
		}
		if exists {
			continue
		}

		var allowed []role.Role
		for _, slug := range def.AllowedRoleSlugs {
			r, err := roleRepo.GetBySlug(slug)
			if err != nil {
				return fmt.Errorf("transition role %s: %w", slug, err)
			}
			allowed = append(allowed, *r)
		}

		edge := &workflow.WorkflowTransition{
			FromStatusID:    from.ID,
			ToStatusID:      to.ID,
			AllowedRoles:    allowed,
			RequiresRemarks: def.RequiresRemarks,
			IsActive:        true,
		}
		if err := transitionRepo.Create(edge); err != nil {
			return fmt.Errorf("create transition %s -> %s: %w", def.FromSlug, def.ToSlug, err)
		}
		created++
	}
	fmt.Printf("Seeded %d transitions\n", created)

	// Bootstrap super admin.
	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@taskcore.local"
	}
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "ChangeMe123!"
	}

	hash, err := auth.HashPassword(adminPassword, bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	superAdmin, err := roleRepo.GetBySlug(role.SuperAdminSlug)
	if err != nil {
		return fmt.Errorf("load super admin role: %w", err)
	}

	admin := &user.User{
		Email:        adminEmail,
		PasswordHash: hash,
		FirstName:    "System",
		LastName:     "Admin",
		IsActive:     true,
	}
	if err := userRepo.UpsertByEmail(admin, []role.Role{*superAdmin}); err != nil {
		return fmt.Errorf("upsert admin user: %w", err)
	}
	fmt.Println("Seeded admin user:", adminEmail)

	return nil
}
