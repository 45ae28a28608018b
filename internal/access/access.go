// Package access resolves role capability sets and answers authorization
// checks against a cached mapping, so admin surfaces never re-query the
// store inline per check.
package access

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	rredis "ridehail/pkg/redis"
)

// Well-known capabilities.
const (
	CapVehicleVerify = "vehicle_verify"
	CapDriverVerify  = "driver_verify"
)

// Checker answers capability questions for user ids.
type Checker struct {
	db    *pgxpool.Pool
	redis *rredis.Client
}

// NewChecker wires a capability checker.
func NewChecker(db *pgxpool.Pool, redis *rredis.Client) *Checker {
	return &Checker{db: db, redis: redis}
}

// HasCapability reports whether the user's role grants the capability.
// Users without a role have no capabilities.
func (c *Checker) HasCapability(ctx context.Context, userID, capability string) bool {
	var roleID *string
	err := c.db.QueryRow(ctx, `SELECT role_id FROM users WHERE id=$1`, userID).Scan(&roleID)
	if err != nil || roleID == nil {
		return false
	}

	caps, err := c.resolve(ctx, *roleID)
	if err != nil {
		log.Printf("[access] resolve role %s: %v", *roleID, err)
		return false
	}
	for _, p := range caps {
		if p == capability {
			return true
		}
	}
	return false
}

// resolve returns the role's permission set, reading through the redis
// cache and falling back to the store on a miss.
func (c *Checker) resolve(ctx context.Context, roleID string) ([]string, error) {
	if c.redis != nil {
		if caps, found, err := c.redis.GetRoleCapabilities(ctx, roleID); err == nil && found {
			return caps, nil
		}
	}

	rows, err := c.db.Query(ctx,
		`SELECT p.permission_name
		 FROM role_permissions rp JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = $1`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var caps []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		caps = append(caps, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if c.redis != nil {
		if err := c.redis.CacheRoleCapabilities(ctx, roleID, caps); err != nil {
			log.Printf("[access] cache role %s: %v", roleID, err)
		}
	}
	return caps, nil
}
