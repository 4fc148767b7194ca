package db

import (
	"context"
	"fmt"
	"image"

	"github.com/banshee-data/depth.report/internal/passthrough"
)

// SaveIntrinsics stores the intrinsics of one passthrough camera for a
// session, replacing any earlier value.
func (db *DB) SaveIntrinsics(ctx context.Context, sessionID string, eye passthrough.Eye, intr passthrough.CameraIntrinsics) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO camera_intrinsics (session_id, eye, fx, fy, cx, cy, skew, width, height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, eye) DO UPDATE SET
			fx = excluded.fx, fy = excluded.fy, cx = excluded.cx, cy = excluded.cy,
			skew = excluded.skew, width = excluded.width, height = excluded.height
	`, sessionID, eye.String(),
		intr.FocalLength[0], intr.FocalLength[1],
		intr.PrincipalPoint[0], intr.PrincipalPoint[1],
		intr.Skew, intr.Resolution.X, intr.Resolution.Y)
	if err != nil {
		return fmt.Errorf("failed to save %s intrinsics: %w", eye, err)
	}
	return nil
}

// Intrinsics returns the stored intrinsics of a session keyed by eye.
func (db *DB) Intrinsics(ctx context.Context, sessionID string) (map[passthrough.Eye]passthrough.CameraIntrinsics, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT eye, fx, fy, cx, cy, skew, width, height
		FROM camera_intrinsics WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query intrinsics: %w", err)
	}
	defer rows.Close()

	out := make(map[passthrough.Eye]passthrough.CameraIntrinsics)
	for rows.Next() {
		var (
			name string
			intr passthrough.CameraIntrinsics
			w, h int
		)
		if err := rows.Scan(&name, &intr.FocalLength[0], &intr.FocalLength[1],
			&intr.PrincipalPoint[0], &intr.PrincipalPoint[1], &intr.Skew, &w, &h); err != nil {
			return nil, fmt.Errorf("failed to scan intrinsics: %w", err)
		}
		eye, err := passthrough.ParseEye(name)
		if err != nil {
			return nil, err
		}
		intr.Resolution = image.Pt(w, h)
		out[eye] = intr
	}
	return out, rows.Err()
}
