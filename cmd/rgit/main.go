// Command rgit is the thin CLI collaborator: command-line parsing and
// process exit codes are explicitly out of core scope (spec.md §1), so
// this binary does nothing but map each subcommand 1:1 onto a
// modules/rgit/repo.Repository operation and report errors on stderr.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/object"
	"github.com/rgitvcs/rgit/modules/rgit/repo"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "rgit:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: rgit <command> [args...]")
	}
	cmd, rest := args[0], args[1:]

	if cmd == "init" {
		dir := "."
		if len(rest) > 0 {
			dir = rest[0]
		}
		r, err := repo.Init(dir)
		if err != nil {
			return err
		}
		defer r.Close()
		return nil
	}

	r, err := repo.Open(".")
	if err != nil {
		return err
	}
	defer r.Close()

	ctx := context.Background()

	switch cmd {
	case "hash-object":
		return cmdHashObject(r, rest)
	case "cat-file":
		return cmdCatFile(r, rest)
	case "write-tree":
		oid, err := r.WriteTree()
		if err != nil {
			return err
		}
		fmt.Println(oid)
		return nil
	case "read-tree":
		return cmdReadTree(r, rest)
	case "commit":
		return cmdCommit(r, rest)
	case "log":
		return cmdLog(r, rest)
	case "checkout":
		if len(rest) != 1 {
			return fmt.Errorf("usage: rgit checkout <name>")
		}
		return r.Checkout(rest[0])
	case "tag":
		return cmdTag(r, rest)
	case "branch":
		return cmdBranch(r, rest)
	case "status":
		return cmdStatus(r)
	case "reset":
		return cmdReset(r, rest)
	case "show":
		return cmdShow(r, rest)
	case "diff":
		return cmdDiff(ctx, r, rest)
	case "merge":
		return cmdMerge(ctx, r, rest)
	case "merge-base":
		return cmdMergeBase(r, rest)
	case "fetch":
		if len(rest) != 1 {
			return fmt.Errorf("usage: rgit fetch <path>")
		}
		return r.Fetch(rest[0])
	case "push":
		if len(rest) != 2 {
			return fmt.Errorf("usage: rgit push <path> <branch>")
		}
		return r.Push(rest[0], rest[1])
	case "add":
		if len(rest) == 0 {
			return fmt.Errorf("usage: rgit add <paths...>")
		}
		return r.Add(rest)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func cmdHashObject(r *repo.Repository, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rgit hash-object <path>")
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	oid, err := r.HashObject(content, object.BlobType)
	if err != nil {
		return err
	}
	fmt.Println(oid)
	return nil
}

func cmdCatFile(r *repo.Repository, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rgit cat-file <name>")
	}
	oid, err := r.GetOid(args[0])
	if err != nil {
		return err
	}
	content, err := r.GetObjectContent(oid, object.InvalidType)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(content)
	return err
}

func cmdReadTree(r *repo.Repository, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rgit read-tree <name>")
	}
	oid, err := r.GetOid(args[0])
	if err != nil {
		return err
	}
	return r.ReadTree(oid, true)
}

func cmdCommit(r *repo.Repository, args []string) error {
	message := ""
	for i := 0; i < len(args); i++ {
		if args[i] == "-m" && i+1 < len(args) {
			message = args[i+1]
		}
	}
	oid, err := r.Commit(message)
	if err != nil {
		return err
	}
	fmt.Println(oid)
	return nil
}

func cmdLog(r *repo.Repository, args []string) error {
	name := "@"
	if len(args) > 0 {
		name = args[0]
	}
	start, err := r.GetOid(name)
	if err != nil {
		return err
	}
	oids, err := r.IterCommitsAndParents([]plumbing.Hash{start})
	if err != nil {
		return err
	}
	for _, oid := range oids {
		fmt.Println(oid)
	}
	return nil
}

func cmdTag(r *repo.Repository, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: rgit tag <name> [<commit>]")
	}
	name := "@"
	if len(args) > 1 {
		name = args[1]
	}
	oid, err := r.GetOid(name)
	if err != nil {
		return err
	}
	return r.CreateTag(args[0], oid)
}

func cmdBranch(r *repo.Repository, args []string) error {
	if len(args) == 0 {
		branches, err := r.Refs().IterRefs("heads", false)
		if err != nil {
			return err
		}
		for _, b := range branches {
			fmt.Println(b.Name.Short())
		}
		return nil
	}
	start := "@"
	if len(args) > 1 {
		start = args[1]
	}
	oid, err := r.GetOid(start)
	if err != nil {
		return err
	}
	return r.CreateBranch(args[0], oid)
}

func cmdStatus(r *repo.Repository) error {
	working, err := r.GetWorkingTree()
	if err != nil {
		return err
	}
	headOid, err := r.GetOid("@")
	if err != nil {
		return err
	}
	staged := map[string]plumbing.Hash{}
	if !headOid.IsZero() {
		commit, err := r.GetCommit(headOid)
		if err != nil {
			return err
		}
		staged, err = r.GetTree(commit.Tree)
		if err != nil {
			return err
		}
	}
	for p, oid := range working {
		if s, ok := staged[p]; !ok || s != oid {
			fmt.Println("modified:", p)
		}
	}
	for p := range staged {
		if _, ok := working[p]; !ok {
			fmt.Println("deleted:", p)
		}
	}
	return nil
}

func cmdReset(r *repo.Repository, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: rgit reset <commit> [--hard]")
	}
	oid, err := r.GetOid(args[0])
	if err != nil {
		return err
	}
	if err := r.Reset(oid); err != nil {
		return err
	}
	for _, a := range args[1:] {
		if a == "--hard" {
			commit, err := r.GetCommit(oid)
			if err != nil {
				return err
			}
			return r.ReadTree(commit.Tree, true)
		}
	}
	return nil
}

func cmdShow(r *repo.Repository, args []string) error {
	name := "@"
	if len(args) > 0 {
		name = args[0]
	}
	oid, err := r.GetOid(name)
	if err != nil {
		return err
	}
	commit, err := r.GetCommit(oid)
	if err != nil {
		return err
	}
	fmt.Println(commit.Message)
	return nil
}

func cmdDiff(ctx context.Context, r *repo.Repository, args []string) error {
	name := "@"
	if len(args) > 0 {
		name = args[0]
	}
	oid, err := r.GetOid(name)
	if err != nil {
		return err
	}
	commit, err := r.GetCommit(oid)
	if err != nil {
		return err
	}
	from, err := r.GetTree(commit.Tree)
	if err != nil {
		return err
	}
	to, err := r.GetWorkingTree()
	if err != nil {
		return err
	}
	out, err := r.DiffTrees(ctx, to, from)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func cmdMerge(ctx context.Context, r *repo.Repository, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rgit merge <commit>")
	}
	oid, err := r.GetOid(args[0])
	if err != nil {
		return err
	}
	merged, err := r.Merge(ctx, oid)
	if err != nil {
		return err
	}
	fmt.Println(merged)
	return nil
}

func cmdMergeBase(r *repo.Repository, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: rgit merge-base <a> <b>")
	}
	a, err := r.GetOid(args[0])
	if err != nil {
		return err
	}
	b, err := r.GetOid(args[1])
	if err != nil {
		return err
	}
	base, err := r.GetMergeBase(a, b)
	if err != nil {
		return err
	}
	fmt.Println(base)
	return nil
}

func init() {
	logrus.SetLevel(logrus.WarnLevel)
}
