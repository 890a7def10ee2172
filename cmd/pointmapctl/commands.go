package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/andreyvit/pointmap"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"
)

func newLsCmd(a *app) *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List persisted cells in key order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStorage()
			if err != nil {
				return err
			}
			defer closeStorage(s, cmd.ErrOrStderr())

			points, err := s.Cells()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, p := range points {
				if !long {
					fmt.Fprintf(w, "%d %d\n", p.X, p.Y)
					continue
				}
				var size int
				err := s.ReadCell(p, func(data []byte) error {
					size = len(data)
					return nil
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%d %d %d %s\n", p.X, p.Y, size, s.Location(p))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "also print size and location")
	return cmd
}

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat X Y",
		Short: "Decode a msgpack cell and print its value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			s, err := a.openStorage()
			if err != nil {
				return err
			}
			defer closeStorage(s, cmd.ErrOrStderr())

			var v any
			err = s.ReadCell(p, func(data []byte) error {
				v, err = decodeGeneric(data)
				return err
			})
			if err != nil {
				return fmt.Errorf("%v: %w", p, err)
			}
			return printValue(cmd.OutOrStdout(), a.cfg.Format, v)
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	var envelopeOnly bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify checksums and payloads of all cells",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStorage()
			if err != nil {
				return err
			}
			defer closeStorage(s, cmd.ErrOrStderr())

			points, err := s.Cells()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			var bad int
			for _, p := range points {
				err := s.ReadCell(p, func(data []byte) error {
					if envelopeOnly {
						_, err := pointmap.DecodeEnvelope(data)
						return pointmap.DetachDataError(err)
					}
					_, err := decodeGeneric(data)
					return err
				})
				if err != nil {
					bad++
					fmt.Fprintf(w, "BAD %d %d: %v\n", p.X, p.Y, err)
					a.logger.LogAttrs(cmd.Context(), slog.LevelDebug, "pointmapctl: bad cell", slog.String("location", s.Location(p)), slog.Any("err", err))
				}
			}
			fmt.Fprintf(w, "checked %d cells, %d bad\n", len(points), bad)
			if bad > 0 {
				return fmt.Errorf("%d bad cells", bad)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&envelopeOnly, "envelope-only", false, "only verify checksums, for cells not encoded with msgpack")
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm X Y",
		Short: "Delete a persisted cell",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			s, err := a.openStorage()
			if err != nil {
				return err
			}
			defer closeStorage(s, cmd.ErrOrStderr())
			return s.DeleteCell(p)
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	var toBolt, toDir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy all cells into another storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (toBolt == "") == (toDir == "") {
				return errors.New("exactly one of --to-bolt and --to-dir is required")
			}
			src, err := a.openStorage()
			if err != nil {
				return err
			}
			defer closeStorage(src, cmd.ErrOrStderr())

			var dst pointmap.Storage
			if toBolt != "" {
				dst, err = pointmap.OpenBoltStorage(toBolt, pointmap.BoltOptions{})
				if errors.Is(err, bbolt.ErrTimeout) {
					return fmt.Errorf("%s is locked by another process", toBolt)
				} else if err != nil {
					return err
				}
			} else {
				dst = pointmap.DirStorage(toDir, pointmap.DirOptions{Ext: a.cfg.Ext})
			}
			defer closeStorage(dst, cmd.ErrOrStderr())

			n, err := migrate(src, dst)
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d cells\n", n)
			return err
		},
	}
	cmd.Flags().StringVar(&toBolt, "to-bolt", "", "destination Bolt file")
	cmd.Flags().StringVar(&toDir, "to-dir", "", "destination root directory")
	return cmd
}

func migrate(src, dst pointmap.Storage) (int, error) {
	points, err := src.Cells()
	if err != nil {
		return 0, err
	}
	var n int
	for _, p := range points {
		ok, err := dst.HasColumn(p.X)
		if err != nil {
			return n, err
		}
		if !ok {
			if err := dst.CreateColumn(p.X); err != nil {
				return n, err
			}
		}
		err = src.ReadCell(p, func(data []byte) error {
			return dst.WriteCell(p, data)
		})
		if err != nil {
			return n, fmt.Errorf("%v: %w", p, err)
		}
		n++
	}
	return n, nil
}

// decodeGeneric decodes a msgpack cell. Errors never reference data, which
// may belong to a storage mapping.
func decodeGeneric(data []byte) (any, error) {
	payload, err := pointmap.DecodeEnvelope(data)
	if err != nil {
		return nil, pointmap.DetachDataError(err)
	}
	var v any
	if err := msgpack.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("decoding msgpack: %w", err)
	}
	return v, nil
}

func printValue(w io.Writer, format string, v any) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
