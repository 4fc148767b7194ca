package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/banshee-data/depth.report/internal/depth/geom"
	"github.com/banshee-data/depth.report/internal/depth/provider"
	"github.com/banshee-data/depth.report/internal/depth/reproject"
)

// FrameRecord is one eye of one recorded depth frame.
type FrameRecord struct {
	Frame             uint64
	Eye               reproject.Eye
	Descriptor        reproject.FrameDescriptor
	RenderFov         reproject.FovTangents
	RenderOrientation geom.Quat
	// Reprojection and Reprojection3DOF are nil when the frame was
	// published without them.
	Reprojection     *geom.Mat4
	Reprojection3DOF *geom.Mat4
}

// Matrices are stored as JSON arrays. Non-finite entries, which a degenerate
// FOV produces, are stored as the strings "NaN", "+Inf" and "-Inf".
func encodeMatrix(has bool, m geom.Mat4) (sql.NullString, error) {
	if !has {
		return sql.NullString{}, nil
	}
	var vals [16]any
	for i, v := range m {
		switch {
		case math.IsNaN(v), math.IsInf(v, 0):
			vals[i] = strconv.FormatFloat(v, 'g', -1, 64)
		default:
			vals[i] = v
		}
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeMatrix(s sql.NullString) (*geom.Mat4, error) {
	if !s.Valid {
		return nil, nil
	}
	var vals [16]any
	if err := json.Unmarshal([]byte(s.String), &vals); err != nil {
		return nil, err
	}
	var m geom.Mat4
	for i, v := range vals {
		switch v := v.(type) {
		case float64:
			m[i] = v
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			m[i] = f
		default:
			return nil, fmt.Errorf("entry %d: unexpected %T", i, v)
		}
	}
	return &m, nil
}

// SessionRecorder stores every published frame of a provider under one
// session. It implements provider.Recorder.
type SessionRecorder struct {
	db        *DB
	sessionID string
}

// NewSessionRecorder returns a recorder writing to sessionID, which must
// already exist.
func (db *DB) NewSessionRecorder(ctx context.Context, sessionID string) (*SessionRecorder, error) {
	if _, err := db.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return &SessionRecorder{db: db, sessionID: sessionID}, nil
}

// SessionID returns the session being recorded.
func (r *SessionRecorder) SessionID() string { return r.sessionID }

// RecordFrame implements provider.Recorder.
func (r *SessionRecorder) RecordFrame(ctx context.Context, u provider.Uniforms) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin frame insert: %w", err)
	}
	defer tx.Rollback()

	for eye := 0; eye < reproject.NumEyes; eye++ {
		d := u.Descriptors[eye]
		var far sql.NullFloat64
		if !d.HasInfiniteFar() {
			far = sql.NullFloat64{Float64: d.FarZ, Valid: true}
		}
		m6, err := encodeMatrix(u.Has6DOF, u.Reprojection[eye])
		if err != nil {
			return err
		}
		m3, err := encodeMatrix(u.Has3DOF, u.Reprojection3DOF[eye])
		if err != nil {
			return err
		}
		fov, render, pos, rot, rr := d.Fov, u.RenderFov[eye], d.CreatePose.Position, d.CreatePose.Rotation, u.RenderOrientation
		_, err = tx.ExecContext(ctx, `
			INSERT INTO depth_frames (
				session_id, frame, eye, timestamp_nanos,
				fov_left, fov_right, fov_up, fov_down, near_z, far_z,
				pos_x, pos_y, pos_z, rot_x, rot_y, rot_z, rot_w,
				render_left, render_right, render_up, render_down,
				render_rot_x, render_rot_y, render_rot_z, render_rot_w,
				reprojection, reprojection3
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			r.sessionID, int64(u.Frame), eye, d.TimestampNanos,
			fov.Left, fov.Right, fov.Up, fov.Down, d.NearZ, far,
			pos.X, pos.Y, pos.Z, rot.X, rot.Y, rot.Z, rot.W,
			render.Left, render.Right, render.Up, render.Down,
			rr.X, rr.Y, rr.Z, rr.W,
			m6, m3,
		)
		if err != nil {
			return fmt.Errorf("failed to insert frame %d eye %d: %w", u.Frame, eye, err)
		}
	}
	return tx.Commit()
}

// Frames returns every recorded frame of a session ordered by frame then
// eye.
func (db *DB) Frames(ctx context.Context, sessionID string) ([]FrameRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT frame, eye, timestamp_nanos,
			fov_left, fov_right, fov_up, fov_down, near_z, far_z,
			pos_x, pos_y, pos_z, rot_x, rot_y, rot_z, rot_w,
			render_left, render_right, render_up, render_down,
			render_rot_x, render_rot_y, render_rot_z, render_rot_w,
			reprojection, reprojection3
		FROM depth_frames
		WHERE session_id = ?
		ORDER BY frame, eye
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	var out []FrameRecord
	for rows.Next() {
		var (
			rec    FrameRecord
			frame  int64
			eye    int
			far    sql.NullFloat64
			m6, m3 sql.NullString
			d      = &rec.Descriptor
			pose   = &rec.Descriptor.CreatePose
		)
		err := rows.Scan(&frame, &eye, &d.TimestampNanos,
			&d.Fov.Left, &d.Fov.Right, &d.Fov.Up, &d.Fov.Down, &d.NearZ, &far,
			&pose.Position.X, &pose.Position.Y, &pose.Position.Z,
			&pose.Rotation.X, &pose.Rotation.Y, &pose.Rotation.Z, &pose.Rotation.W,
			&rec.RenderFov.Left, &rec.RenderFov.Right, &rec.RenderFov.Up, &rec.RenderFov.Down,
			&rec.RenderOrientation.X, &rec.RenderOrientation.Y, &rec.RenderOrientation.Z, &rec.RenderOrientation.W,
			&m6, &m3,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}
		rec.Frame = uint64(frame)
		rec.Eye = reproject.Eye(eye)
		d.FarZ = math.Inf(1)
		if far.Valid {
			d.FarZ = far.Float64
		}
		if rec.Reprojection, err = decodeMatrix(m6); err != nil {
			return nil, fmt.Errorf("frame %d: bad reprojection: %w", frame, err)
		}
		if rec.Reprojection3DOF, err = decodeMatrix(m3); err != nil {
			return nil, fmt.Errorf("frame %d: bad 3dof reprojection: %w", frame, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
