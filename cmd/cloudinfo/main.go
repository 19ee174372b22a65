// Package main contains a command to inspect a Potree-format point cloud:
// it loads the octree hierarchy and point data, runs the points through
// batch creation, and reports per-tree statistics.
package main

import (
	"context"
	"image/png"
	"os"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/SatoshiRobatoFujimoto/BA-PointCloud/octree"
	"github.com/SatoshiRobatoFujimoto/BA-PointCloud/potree"
	"github.com/SatoshiRobatoFujimoto/BA-PointCloud/render"
)

var logger = golog.NewDevelopmentLogger("cloudinfo")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	CloudDir    string `flag:"0,required,usage=path to a Potree cloud directory"`
	MaxPerBatch int    `flag:"batch,default=65535,usage=maximum points per renderable batch"`
	MaxDepth    int    `flag:"depth,default=-1,usage=deepest octree level to load (-1 for all)"`
	BoundsImage string `flag:"bounds,usage=write a top-down PNG of node bounds to this path"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	return inspectCloud(ctx, argsParsed, logger)
}

func inspectCloud(ctx context.Context, args Arguments, logger golog.Logger) error {
	meta, err := potree.LoadMeta(args.CloudDir)
	if err != nil {
		return err
	}
	logger.Infof("cloud %q: version %s, %d points declared, spacing %f",
		potree.CloudName(args.CloudDir), meta.Version, meta.Points, meta.Spacing)

	hierarchy, err := potree.LoadHierarchy(ctx, args.CloudDir, meta, logger)
	if err != nil {
		return err
	}
	logger.Infof("hierarchy: %d nodes, %d points", hierarchy.NodeCount, hierarchy.TotalPoints())

	if args.MaxDepth >= 0 {
		pruneBelow(hierarchy.Root, args.MaxDepth)
	}

	if err := potree.LoadAllPoints(ctx, args.CloudDir, meta, hierarchy.Root, logger); err != nil {
		return err
	}

	backend := render.NewBackend(args.MaxPerBatch, logger)
	if err := hierarchy.Root.CreateAllBatches(backend, args.MaxPerBatch); err != nil {
		return err
	}
	logger.Infof("created %d batches holding %d points", backend.NumBatches(), backend.TotalPoints())
	logBatchStats(hierarchy.Root, logger)

	if args.BoundsImage != "" {
		if err := writeBoundsImage(hierarchy.Root, args.BoundsImage); err != nil {
			return err
		}
		logger.Infof("wrote bounds image to %s", args.BoundsImage)
	}

	return releaseAll(hierarchy.Root, backend)
}

// pruneBelow clears the child slots of every node at the given depth,
// detaching the deeper subtrees.
func pruneBelow(node *octree.Node, depth int) {
	if node.Depth() >= depth {
		for octant, child := range node.Children() {
			child.SetParent(nil)
			node.SetChild(octant, nil)
		}
		return
	}
	for _, child := range node.Children() {
		pruneBelow(child, depth)
	}
}

func logBatchStats(node *octree.Node, logger golog.Logger) {
	logger.Debugf("node r%-10s depth %d: %d points in %d batches",
		node.Address(), node.Depth(), node.PointCount(), len(node.Batches()))
	for _, child := range node.Children() {
		logBatchStats(child, logger)
	}
}

func releaseAll(node *octree.Node, backend octree.BatchBackend) error {
	err := node.RemoveBatches(backend, false)
	for _, child := range node.Children() {
		err = multierr.Combine(err, releaseAll(child, backend))
	}
	return err
}

func writeBoundsImage(root *octree.Node, fn string) (err error) {
	//nolint:gosec
	f, err := os.Create(fn)
	if err != nil {
		return
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return png.Encode(f, root.DrawTopDown(1024, 1024))
}
