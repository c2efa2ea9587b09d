// Command devring spins up a small local Chord ring as sibling Docker
// containers, for manually exercising the join/failure scenarios of
// spec.md §8 without a real cluster. It is the local analogue of the
// teacher's cache-workload/mock-origin tooling: a throwaway harness, not
// part of the node's runtime path.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

func main() {
	count := flag.Int("n", 3, "number of ring nodes to start")
	image := flag.String("image", "chordring-node:latest", "container image to run")
	basePort := flag.Int("base-port", 4000, "first node's published port; subsequent nodes increment by one")
	netName := flag.String("network", "chordring-dev", "docker network the nodes join")
	teardown := flag.Bool("down", false, "stop and remove a previously started ring instead of starting one")
	flag.Parse()

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		log.Fatalf("devring: connecting to docker: %v", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if *teardown {
		tearDown(ctx, cli, *count)
		return
	}

	if err := ensureNetwork(ctx, cli, *netName); err != nil {
		log.Fatalf("devring: %v", err)
	}

	var peers []string
	for i := 0; i < *count; i++ {
		peers = append(peers, fmt.Sprintf("chordring-%d:4000", i))
	}

	for i := 0; i < *count; i++ {
		name := fmt.Sprintf("chordring-%d", i)
		port := *basePort + i

		env := []string{
			fmt.Sprintf("CHORDRING_NODE_HOST=%s", name),
			fmt.Sprintf("CHORDRING_BOOTSTRAP_PEERS=%s", joinExceptSelf(peers, i)),
		}

		hostPort := nat.Port(strconv.Itoa(port) + "/tcp")
		containerPort := nat.Port("4000/tcp")

		resp, err := cli.ContainerCreate(ctx, &container.Config{
			Image: *image,
			Env:   env,
			ExposedPorts: nat.PortSet{containerPort: struct{}{}},
		}, &container.HostConfig{
			PortBindings: nat.PortMap{
				containerPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: hostPort.Port()}},
			},
			NetworkMode: container.NetworkMode(*netName),
		}, &network.NetworkingConfig{}, nil, name)
		if err != nil {
			log.Fatalf("devring: creating container %s: %v", name, err)
		}

		if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
			log.Fatalf("devring: starting container %s: %v", name, err)
		}
		fmt.Printf("started %s on host port %d\n", name, port)
	}
}

func ensureNetwork(ctx context.Context, cli *client.Client, name string) error {
	nets, err := cli.NetworkList(ctx, network.ListOptions{})
	if err != nil {
		return fmt.Errorf("listing networks: %w", err)
	}
	for _, n := range nets {
		if n.Name == name {
			return nil
		}
	}
	_, err = cli.NetworkCreate(ctx, name, network.CreateOptions{Driver: "bridge"})
	if err != nil {
		return fmt.Errorf("creating network %s: %w", name, err)
	}
	return nil
}

func tearDown(ctx context.Context, cli *client.Client, count int) {
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("chordring-%d", i)
		timeout := 5
		_ = cli.ContainerStop(ctx, name, container.StopOptions{Timeout: &timeout})
		_ = cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true})
		fmt.Printf("removed %s\n", name)
	}
	os.Exit(0)
}

func joinExceptSelf(peers []string, self int) string {
	out := ""
	for i, p := range peers {
		if i == self {
			continue
		}
		if out != "" {
			out += ","
		}
		out += p
	}
	return out
}
