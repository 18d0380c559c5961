// Package main provides the CNTK Go Framework CLI.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/JinkiJung/CNTK/autodiff"
	"github.com/JinkiJung/CNTK/backend/cpu"
	"github.com/JinkiJung/CNTK/nn"
	"github.com/JinkiJung/CNTK/ops"
	"github.com/JinkiJung/CNTK/optim"
	"github.com/JinkiJung/CNTK/tensor"
)

const version = "v0.0.1-dev"

func main() {
	klog.InitFlags(nil)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("CNTK Go Framework %s\n", version)
			return
		case "train":
			if err := runTrain(os.Args[2:]); err != nil {
				klog.Fatalf("train failed: %+v", err)
			}
			return
		}
	}

	fmt.Println("CNTK Go Framework - Evaluation Criteria and Training for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  train      Train a softmax classifier on synthetic data")
}

// trainConfig holds the train subcommand flags.
type trainConfig struct {
	epochs    int
	batchSize int
	features  int
	classes   int
	lr        float64
	momentum  float64
	optimizer string
	seed      int64
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfg := trainConfig{}
	fs.IntVar(&cfg.epochs, "epochs", 200, "number of training iterations")
	fs.IntVar(&cfg.batchSize, "batch", 64, "samples per batch")
	fs.IntVar(&cfg.features, "features", 8, "input feature dimension")
	fs.IntVar(&cfg.classes, "classes", 4, "number of classes")
	fs.Float64Var(&cfg.lr, "lr", 0.1, "learning rate")
	fs.Float64Var(&cfg.momentum, "momentum", 0.9, "SGD momentum")
	fs.StringVar(&cfg.optimizer, "optimizer", "sgd", "optimizer: sgd or adam")
	fs.Int64Var(&cfg.seed, "seed", 42, "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return train(cfg)
}

// train fits a linear softmax classifier to linearly separable
// synthetic clusters and reports the final loss and error rate.
func train(cfg trainConfig) error {
	rng := rand.New(rand.NewSource(cfg.seed))
	backend := autodiff.New(cpu.New())

	klog.Infof("training linear classifier: %d features, %d classes, %d epochs, optimizer=%s",
		cfg.features, cfg.classes, cfg.epochs, cfg.optimizer)

	input, target, labels, err := syntheticBatch(cfg, rng, backend)
	if err != nil {
		return err
	}

	model := nn.NewLinear(cfg.features, cfg.classes, rng, backend)

	var optimizer optim.Optimizer
	switch cfg.optimizer {
	case "sgd":
		optimizer = optim.NewSGD(model.Parameters(), optim.SGDConfig{
			LR:       float32(cfg.lr),
			Momentum: float32(cfg.momentum),
		}, backend)
	case "adam":
		optimizer = optim.NewAdam(model.Parameters(), optim.AdamConfig{
			LR: float32(cfg.lr),
		}, backend)
	default:
		return fmt.Errorf("unknown optimizer %q", cfg.optimizer)
	}

	criterion := nn.NewCrossEntropyWithSoftmaxLoss(backend, -1)

	bar := progressbar.NewOptions(cfg.epochs,
		progressbar.OptionSetDescription("Training"),
		progressbar.OptionShowCount(),
	)

	var lastLoss float32
	for epoch := 0; epoch < cfg.epochs; epoch++ {
		backend.Tape().Clear()
		backend.Tape().StartRecording()

		scores := model.Forward(input)
		perSample := criterion.Forward(scores, target)
		loss := perSample.Sum().MulScalar(1.0 / float64(cfg.batchSize))

		grads, err := autodiff.Backward(loss)
		backend.Tape().StopRecording()
		if err != nil {
			return err
		}

		optimizer.Step(grads)
		optimizer.ZeroGrad()

		lastLoss = loss.Item()
		if epoch%50 == 0 {
			klog.V(1).Infof("epoch %d: loss=%.4f", epoch, lastLoss)
		}
		_ = bar.Add(1)
	}
	fmt.Println()

	scores := model.Forward(input)
	errRate := ops.ClassificationError(scores, target, 1, -1).Item()

	klog.Infof("done: loss=%.4f error=%.2f%% (%d samples)", lastLoss, errRate*100, len(labels))
	fmt.Printf("final loss:  %.4f\n", lastLoss)
	fmt.Printf("error rate:  %.2f%%\n", errRate*100)
	return nil
}

// syntheticBatch samples one linearly separable batch: each class gets
// a random unit-ish center and samples scatter around it.
func syntheticBatch[B tensor.Backend](cfg trainConfig, rng *rand.Rand, backend B) (input, target *tensor.Tensor[float32, B], labels []int, err error) {
	centers := make([][]float64, cfg.classes)
	for c := range centers {
		centers[c] = make([]float64, cfg.features)
		for f := range centers[c] {
			centers[c][f] = rng.NormFloat64() * 3
		}
	}

	data := make([]float32, cfg.batchSize*cfg.features)
	labels = make([]int, cfg.batchSize)
	for i := 0; i < cfg.batchSize; i++ {
		c := rng.Intn(cfg.classes)
		labels[i] = c
		for f := 0; f < cfg.features; f++ {
			data[i*cfg.features+f] = float32(centers[c][f] + rng.NormFloat64()*0.5)
		}
	}

	input, err = tensor.FromSlice(data, tensor.Shape{cfg.batchSize, cfg.features}, backend)
	if err != nil {
		return nil, nil, nil, err
	}
	target, err = tensor.OneHot[float32](labels, cfg.classes, backend)
	if err != nil {
		return nil, nil, nil, err
	}
	return input, target, labels, nil
}
