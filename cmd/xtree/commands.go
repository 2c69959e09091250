package main

import (
	"errors"
	"fmt"
	"io"
	randv2 "math/rand/v2"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/id"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/lib/xlog"
	"github.com/benz9527/xtree/observability"
)

var kindTitles = map[string]string{
	kindRandom: "Binary Tree",
	kindBST:    "BST",
	kindAVL:    "AVLTree",
}

func newKindTree(kind string, cfg *Config, logger xlog.XLogger) (tree.BinaryTree[string], error) {
	opts := []tree.TreeOption[string]{
		tree.WithTreeLogger[string](logger.Named(kind)),
	}
	switch kind {
	case kindRandom:
		if cfg.Random.Seed != 0 {
			opts = append(opts, tree.WithRandomTreeSeed[string](cfg.Random.Seed, cfg.Random.Seed))
		}
		return tree.NewRandomTree[string](opts...), nil
	case kindBST:
		return tree.NewBinarySearchTree[string](opts...), nil
	case kindAVL:
		return tree.NewAVLTree[string](opts...), nil
	default:
	}
	return nil, fmt.Errorf("unknown tree kind %q", kind)
}

// validateTree runs the validators matching the tree kind.
func validateTree(t tree.BinaryTree[string]) error {
	switch typ := t.(type) {
	case *tree.AVLTree[string]:
		return tree.AVLViolationValidate[string](typ)
	case *tree.BinarySearchTree[string]:
		return multierr.Combine(
			tree.OrderViolationValidate[string](typ),
			tree.LinkViolationValidate[string](typ),
		)
	default:
	}
	return tree.LinkViolationValidate[string](t)
}

func printWalks(out io.Writer, t tree.BinaryTree[string]) {
	_, _ = fmt.Fprintln(out, strings.Join(t.PreorderWalk(nil), " "))
	_, _ = fmt.Fprintln(out, strings.Join(t.InorderWalk(nil), " "))
	_, _ = fmt.Fprintln(out, strings.Join(t.PostorderWalk(nil), " "))
}

func runDemo(_ *cobra.Command, _ []string, deps appDeps) error {
	out := deps.Out
	meter := deps.Meter.Meter(meterName)
	for _, kind := range deps.Cfg.Kinds {
		t, err := newKindTree(kind, deps.Cfg, deps.Logger)
		if err != nil {
			return err
		}
		reg, err := observability.RegisterTreeStats(meter, kind, t)
		if err != nil {
			return err
		}

		var eric, apple tree.Handle[string]
		for _, w := range demoWords {
			h := t.Insert(w)
			switch w {
			case "eric":
				eric = h
			case "apple":
				apple = h
			}
		}

		_, _ = fmt.Fprintf(out, "%s:\n", kindTitles[kind])
		printWalks(out, t)
		if avl, ok := t.(*tree.AVLTree[string]); ok {
			bf, err := avl.Balance(avl.Root())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "The tree balance is %d\n", bf)
		}
		_, _ = fmt.Fprintf(out, "I found %s\n", t.Search("apple"))
		_, _ = fmt.Fprintf(out, "I found %s\n", t.Search("eric"))

		if err = t.Delete(eric); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, strings.Join(t.InorderWalk(nil), " "))
		_, _ = fmt.Fprintln(out, "I KILLED ERIC!!!!")
		if err = t.Delete(apple); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, strings.Join(t.InorderWalk(nil), " "))
		_, _ = fmt.Fprintln(out, "Sorry, I ate the apple")
		_, _ = fmt.Fprintln(out)

		deps.Logger.Info("demo done", zap.String("kind", kind), zap.Int64("len", t.Len()))
		if err = reg.Unregister(); err != nil {
			return err
		}
	}
	return nil
}

func runWalk(_ *cobra.Command, args []string, deps appDeps) error {
	keys := deps.Cfg.Keys
	if len(args) > 0 {
		keys = lo.FilterMap(args, func(k string, _ int) (string, bool) {
			k = strings.TrimSpace(k)
			return k, len(k) > 0
		})
	}
	out := deps.Out
	for _, kind := range deps.Cfg.Kinds {
		t, err := newKindTree(kind, deps.Cfg, deps.Logger)
		if err != nil {
			return err
		}
		for _, k := range keys {
			t.Insert(k)
		}
		_, _ = fmt.Fprintf(out, "%s (len %d, height %d):\n", kindTitles[kind], t.Len(), t.Height())
		printWalks(out, t)
		_, _ = fmt.Fprint(out, t.String())
		_, _ = fmt.Fprintln(out)
	}
	return nil
}

func runRandom(_ *cobra.Command, _ []string, deps appDeps) error {
	gen, err := id.AlphabetNanoID(id.LowerAlphabet, deps.Cfg.Random.Length)
	if err != nil {
		return err
	}
	keys := lo.Times(deps.Cfg.Random.Count, func(int) string {
		return gen()
	})
	out := deps.Out
	_, _ = fmt.Fprintln(out, strings.Join(keys, " "))
	for _, kind := range deps.Cfg.Kinds {
		t, err := newKindTree(kind, deps.Cfg, deps.Logger)
		if err != nil {
			return err
		}
		for _, k := range keys {
			t.Insert(k)
		}
		if err = validateTree(t); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		_, _ = fmt.Fprintf(out, "%s (len %d, height %d):\n", kindTitles[kind], t.Len(), t.Height())
		_, _ = fmt.Fprintln(out, strings.Join(t.InorderWalk(nil), " "))
	}
	return nil
}

var errViolations = errors.New("[xtree] tree rule violations")

// runCheck deletes a random live handle on one op out of three and
// inserts otherwise, validating every 100 ops.
func runCheck(deps appDeps, ops int) error {
	gen, err := id.AlphabetNanoID(id.LowerAlphabet, deps.Cfg.Random.Length)
	if err != nil {
		return err
	}
	seed := deps.Cfg.Random.Seed
	if seed == 0 {
		seed = randv2.Uint64()
	}
	rand := randv2.New(randv2.NewPCG(seed, ^seed))
	meter := deps.Meter.Meter(meterName)
	out := deps.Out

	var merr error
	for _, kind := range deps.Cfg.Kinds {
		t, err := newKindTree(kind, deps.Cfg, deps.Logger)
		if err != nil {
			return err
		}
		if _, err = observability.RegisterTreeStats(meter, kind, t); err != nil {
			return err
		}

		live := make([]tree.Handle[string], 0, ops)
		var kerr error
		for i := 0; i < ops && kerr == nil; i++ {
			if len(live) == 0 || rand.IntN(3) > 0 {
				live = append(live, t.Insert(gen()))
			} else {
				j := rand.IntN(len(live))
				if kerr = t.Delete(live[j]); kerr != nil {
					break
				}
				live[j] = live[len(live)-1]
				live = live[:len(live)-1]
			}
			if i%100 == 99 {
				kerr = validateTree(t)
			}
		}
		kerr = multierr.Append(kerr, validateTree(t))
		if int64(len(live)) != t.Len() {
			kerr = multierr.Append(kerr, fmt.Errorf("live handles %d, len %d", len(live), t.Len()))
		}

		stats := t.Stats()
		if kerr != nil {
			deps.Logger.Error(kerr, "check failed", zap.String("kind", kind))
			_, _ = fmt.Fprintf(out, "%s: FAILED (%v)\n", kind, kerr)
			merr = multierr.Append(merr, fmt.Errorf("%s: %w", kind, kerr))
			continue
		}
		_, _ = fmt.Fprintf(out, "%s: ok (len %d, height %d, inserts %d, deletes %d, rotations %d)\n",
			kind, stats.Len, stats.Height, stats.Inserts, stats.Deletes, stats.Rotations)
	}
	if merr != nil {
		return multierr.Append(merr, errViolations)
	}
	return nil
}
